package types

type ManualDownloadCandidate struct {
	SourceName     string         `json:"source_name"`
	URL            string         `json:"url"`
	Classification CandidateClass `json:"classification"`
	Selected       bool           `json:"selected"`
}

// ResolverReport is the parsed form of the resolver's markdown output.
type ResolverReport struct {
	Text      string `json:"text"`
	ItemCount int    `json:"item_count"`
	// URLs is every extracted URL after dedup and placeholder removal,
	// search fallbacks included.
	URLs       []string                  `json:"urls"`
	Candidates []ManualDownloadCandidate `json:"candidates"`
}

// Downloadable returns the Direct candidates in report order.
func (r ResolverReport) Downloadable() []ManualDownloadCandidate {
	var out []ManualDownloadCandidate
	for _, candidate := range r.Candidates {
		if candidate.Classification == CandidateDirect {
			out = append(out, candidate)
		}
	}
	return out
}

type DownloadStatus string

const (
	DownloadStatusDownloaded DownloadStatus = "downloaded"
	DownloadStatusFailed     DownloadStatus = "failed"
	DownloadStatusSkipped    DownloadStatus = "skipped"
)

type DownloadOutcome struct {
	URL      string         `json:"url"`
	FileName string         `json:"file_name,omitempty"`
	Path     string         `json:"path,omitempty"`
	Bytes    int64          `json:"bytes,omitempty"`
	Status   DownloadStatus `json:"status"`
	Reason   string         `json:"reason,omitempty"`
}
