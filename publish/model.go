package publish

import "time"

type ItemStatus string

const (
	StatusUploaded ItemStatus = "uploaded"
	StatusSkipped  ItemStatus = "skipped"
	StatusFiltered ItemStatus = "filtered"
	StatusFailed   ItemStatus = "failed"
)

type Item struct {
	Local  string `json:"local"`
	Remote string `json:"remote"`
}

type ItemResult struct {
	Item
	Status      ItemStatus    `json:"status"`
	Size        int64         `json:"size"`
	ContentType string        `json:"content_type,omitempty"`
	Checksum    string        `json:"checksum,omitempty"`
	Cost        time.Duration `json:"cost"`
	Err         string        `json:"err,omitempty"`

	err error
}

type Report struct {
	Total    int           `json:"total"`
	Uploaded int           `json:"uploaded"`
	Skipped  int           `json:"skipped"`
	Filtered int           `json:"filtered"`
	Failed   int           `json:"failed"`
	Bytes    int64         `json:"bytes"`
	Cost     time.Duration `json:"cost"`
	Items    []*ItemResult `json:"items"`
}

func (r *Report) add(rs *ItemResult) {
	r.Items = append(r.Items, rs)
	switch rs.Status {
	case StatusUploaded:
		r.Uploaded++
		r.Bytes += rs.Size
	case StatusSkipped:
		r.Skipped++
	case StatusFiltered:
		r.Filtered++
	case StatusFailed:
		r.Failed++
	}
}
