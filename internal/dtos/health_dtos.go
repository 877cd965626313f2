package dtos

import "time"

type CORSInfo struct {
	Enabled        bool     `json:"enabled"`
	AllowedOrigins []string `json:"allowedOrigins"`
	AllowedMethods []string `json:"allowedMethods"`
}

type HealthCheckResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Server    string    `json:"server"`
	Version   string    `json:"version"`
	CORS      CORSInfo  `json:"cors"`
	Database  string    `json:"database"`
}
