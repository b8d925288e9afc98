package model

import "time"

// RunReport summarizes one scrape-reconcile-export pass.
type RunReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Scraped    int       `json:"scraped"`
	Inventory  int       `json:"inventory"`
	Exported   int       `json:"exported"`
	FeedPath   string    `json:"feed_path"`
	UploadURL  string    `json:"upload_url,omitempty"`
}
