package domain

// DerivationMutation is the must-both-succeed half of a derivation: the
// document location/status update and the `derived` ledger entry, applied
// by the store in one transaction. ExpectedVersion carries the version
// read together with the from-snapshot; the store refuses the mutation
// with ErrConflict when the row has moved on since that read.
type DerivationMutation struct {
	CompanyID       string
	DocumentID      string
	ExpectedVersion int64
	TargetAreaID    string
	TargetUserID    string
	NewStatus       DocumentStatus
	Entry           *HistoryEntry
}
