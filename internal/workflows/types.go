package workflows

type ReviewWorkflowInput struct {
	RunID    string `json:"run_id"`
	InputDir string `json:"input_dir"`
}

type ReviewWorkflowOutput struct {
	Status   string `json:"status"`
	OutPath  string `json:"out_path,omitempty"`
	Warnings int    `json:"warnings"`
}

// ReviewProgress is the query-visible snapshot of a running review.
type ReviewProgress struct {
	RunID       string            `json:"run_id"`
	State       string            `json:"state"`
	Total       int               `json:"total"`
	Done        int               `json:"done"`
	CurrentFile string            `json:"current_file,omitempty"`
	PerDocument map[string]string `json:"per_document"`
}
