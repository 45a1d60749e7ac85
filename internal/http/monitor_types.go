package http

type Snapshot struct {
	UpdatedAt   int64         `json:"updatedAt"`
	WiFi        string        `json:"wifi"`
	SignalLevel *int          `json:"signalLevel,omitempty"`
	CPU         int           `json:"cpu"`
	RAM         int           `json:"ram"`
	Errors      SnapshotError `json:"errors"`
}

type SnapshotError struct {
	WiFi string `json:"wifi,omitempty"`
	CPU  string `json:"cpu,omitempty"`
	RAM  string `json:"ram,omitempty"`
}

type HistoryPoint struct {
	Time int64  `json:"time"`
	WiFi string `json:"wifi"`
	CPU  int    `json:"cpu"`
	RAM  int    `json:"ram"`
}

// pushMessage is what websocket clients receive on every sample.
type pushMessage struct {
	WiFi      string `json:"wifi"`
	CPU       int    `json:"cpu"`
	Timestamp string `json:"timestamp"`
}
