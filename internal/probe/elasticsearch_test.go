package probe

import (
	"context"
	"testing"
)

const esInfoOutput = `{"name":"es01","cluster_name":"docker-cluster","version":{"number":"8.11.1"},"tagline":"You Know, for Search"}`
const esHealthOutput = `{"cluster_name":"docker-cluster","status":"yellow","number_of_nodes":1,"active_shards":7,"unassigned_shards":3}`

func TestElasticsearchCapturesErrorsPerContainer(t *testing.T) {
	r := newFakeRunner().
		on("docker ps --filter name=elasticsearch --format {{.Names}}", "es01\nes02\n").
		on("docker exec es01 curl -s "+esURL, esInfoOutput).
		on("docker exec es01 curl -s "+esURL+"/_cluster/health", esHealthOutput).
		fail("docker exec es02 curl -s "+esURL, errExit)
	p := New(r, Options{GOOS: "linux"})

	es := p.Elasticsearch(context.Background())
	if es.Count != 2 || es.Error != "" {
		t.Fatalf("unexpected result %+v", es)
	}

	ok, bad := es.Containers[0], es.Containers[1]
	if ok.Container != "es01" || ok.Status != "yellow" || ok.Version != "8.11.1" || ok.ActiveShards != 7 || ok.Error != "" {
		t.Errorf("es01 = %+v", ok)
	}
	if bad.Container != "es02" || bad.Error == "" {
		t.Errorf("es02 = %+v", bad)
	}
}

func TestElasticsearchBadJSON(t *testing.T) {
	r := newFakeRunner().
		on("docker ps --filter name=search --format {{.Names}}", "search\n").
		on("docker exec search curl -s "+esURL, "")
	p := New(r, Options{GOOS: "linux", ESFilter: "search"})

	es := p.Elasticsearch(context.Background())
	if es.Count != 1 || es.Containers[0].Error == "" {
		t.Errorf("unexpected result %+v", es)
	}
}

func TestElasticsearchDockerMissing(t *testing.T) {
	es := New(newFakeRunner(), Options{GOOS: "linux"}).Elasticsearch(context.Background())
	if es.Count != 0 || es.Error == "" || es.Containers == nil {
		t.Errorf("unexpected result %+v", es)
	}
}
