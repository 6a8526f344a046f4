package dedup

import (
	"github.com/afeder69-jpg/picotinho-sub001/internal/catalog"
)

// Cluster is a group of masters that look like the same real product. The
// primary is the member the others would be merged into.
type Cluster struct {
	Primary    catalog.MasterProduct   `json:"primary"`
	Duplicates []catalog.MasterProduct `json:"duplicates"`
	AvgScore   float64                 `json:"avg_score"`
}

// Report is the outcome of one consolidation scan.
type Report struct {
	Clusters    []Cluster `json:"clusters"`
	Comparisons int       `json:"comparisons"`
	CapReached  bool      `json:"cap_reached"`
}
