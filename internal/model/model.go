package model

// Tier identifies which matching strategy produced (or failed to produce) a match.
type Tier string

const (
	TierExact      Tier = "exact"
	TierNormalized Tier = "normalized"
	TierAnchored   Tier = "anchored"
	TierLineRange  Tier = "line_range"
	TierFuzzy      Tier = "fuzzy"
	TierFailed     Tier = "failed"
)

// State is the terminal outcome of one multi-edit run.
type State string

const (
	StateChecked    State = "checked"
	StatePreviewed  State = "previewed"
	StateApplied    State = "applied"
	StateFailed     State = "failed"
	StateRolledBack State = "rolled_back"
)

// EditBlock is one requested substitution within a file.
type EditBlock struct {
	Search  string `json:"search"`
	Replace string `json:"replace"`

	// Optional anchor lines around the search text.
	ContextBefore string `json:"context_before,omitempty"`
	ContextAfter  string `json:"context_after,omitempty"`

	// Optional 1-indexed inclusive search window. Zero means unset.
	LineStart int `json:"line_start,omitempty"`
	LineEnd   int `json:"line_end,omitempty"`
}

// FileEdit is a file path plus the edits applied to it, in order.
type FileEdit struct {
	Path  string      `json:"path"`
	Edits []EditBlock `json:"edits"`

	// ExpectedHash is the MD5 hex digest of the content the edits were
	// planned against. When set, a mismatch fails the file.
	ExpectedHash string `json:"expected_hash,omitempty"`
}

// MatchResult is the outcome of resolving one EditBlock against content.
// Offsets are byte positions into the content, half-open.
type MatchResult struct {
	Success    bool    `json:"success"`
	Tier       Tier    `json:"tier"`
	Confidence float64 `json:"confidence"`
	MatchStart int     `json:"match_start"`
	MatchEnd   int     `json:"match_end"`
	Warning    string  `json:"warning,omitempty"`
	Suggestion string  `json:"suggestion,omitempty"`
}

// EditBlockResult records how one edit block resolved.
type EditBlockResult struct {
	EditIndex    int         `json:"edit_index"`
	Success      bool        `json:"success"`
	Match        MatchResult `json:"match"`
	OriginalText string      `json:"original_text,omitempty"`
	AppliedText  string      `json:"applied_text,omitempty"`
}

// FileEditResult aggregates the block results for one file.
type FileEditResult struct {
	Path          string            `json:"path"`
	Success       bool              `json:"success"`
	EditsApplied  int               `json:"edits_applied"`
	EditsFailed   int               `json:"edits_failed"`
	BlockResults  []EditBlockResult `json:"block_results,omitempty"`
	DiffPreview   string            `json:"diff_preview,omitempty"`
	Errors        []string          `json:"errors,omitempty"`
	Warnings      []string          `json:"warnings,omitempty"`
	RejectContent string            `json:"reject_content,omitempty"`
}

// MultiEditResult is the aggregate outcome of one orchestrator run.
type MultiEditResult struct {
	Success bool  `json:"success"`
	State   State `json:"state"`

	FilesChecked  int `json:"files_checked"`
	FilesModified int `json:"files_modified"`
	TotalEdits    int `json:"total_edits"`
	EditsApplied  int `json:"edits_applied"`
	EditsFailed   int `json:"edits_failed"`

	Results []FileEditResult `json:"results,omitempty"`

	BackupPaths map[string]string `json:"backup_paths,omitempty"`
	RejectFiles map[string]string `json:"reject_files,omitempty"`

	TransactionID string   `json:"transaction_id,omitempty"`
	CanApply      bool     `json:"can_apply"`
	Errors        []string `json:"errors,omitempty"`
	Summary       string   `json:"summary"`
}

// Summary is what the TUI renders after a run.
type Summary struct {
	Message  string
	Modified []string
	Failed   []string
	Rejected []string
}
