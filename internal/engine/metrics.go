package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	FetchRequests             atomic.Int64
	FetchErrors               atomic.Int64
	WikipediaRequests         atomic.Int64
	YouTubeTranscriptRequests atomic.Int64
	YouTubeMetadataRequests   atomic.Int64
	ConvertErrors             atomic.Int64
}

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"fetch_requests":              metrics.FetchRequests.Load(),
		"fetch_errors":                metrics.FetchErrors.Load(),
		"wikipedia_requests":          metrics.WikipediaRequests.Load(),
		"youtube_transcript_requests": metrics.YouTubeTranscriptRequests.Load(),
		"youtube_metadata_requests":   metrics.YouTubeMetadataRequests.Load(),
		"convert_errors":              metrics.ConvertErrors.Load(),
	}
}

// FormatMetrics returns counters as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	keys := []string{
		"fetch_requests", "fetch_errors",
		"wikipedia_requests",
		"youtube_transcript_requests", "youtube_metadata_requests",
		"convert_errors",
	}
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for platform sub-packages.
func IncrWikipedia()         { metrics.WikipediaRequests.Add(1) }
func IncrYouTubeTranscript() { metrics.YouTubeTranscriptRequests.Add(1) }
func IncrYouTubeMetadata()   { metrics.YouTubeMetadataRequests.Add(1) }
func IncrConvertError()      { metrics.ConvertErrors.Add(1) }
