// Package modeldto provides locally used types and their structure for data transfer objects.
package modeldto

import "time"

type (
	ResponseStyles struct {
		Default string   `json:"default"`
		Styles  []string `json:"styles"`
	}

	ResponseStats struct {
		Identifier string    `json:"identifier"`
		Kind       string    `json:"kind"`
		Hits       int64     `json:"hits"`
		CreatedAt  time.Time `json:"created_at"`
		ModifiedAt time.Time `json:"modified_at"`
		URL        string    `json:"url"`
	}
)
