package quantityupdate

import (
	"sync"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
)

var ErrNoActiveDraft = shared.NewDomainError("INVALID_STATE", "No rejection is being drafted")

// ReasonDraft is the rejection reason currently being typed for one request
type ReasonDraft struct {
	RequestID string `json:"requestId"`
	Reason    string `json:"reason"`
}

// DraftSlot holds at most one ReasonDraft. Starting a draft for another
// request replaces the previous draft and its unsubmitted text.
type DraftSlot struct {
	mu      sync.Mutex
	current *ReasonDraft
}

// NewDraftSlot creates an empty slot
func NewDraftSlot() *DraftSlot {
	return &DraftSlot{}
}

// Begin opens a draft for requestID. Re-opening the draft of the same request
// keeps its text. The discarded draft, if any, is returned.
func (s *DraftSlot) Begin(requestID string) (discarded *ReasonDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.RequestID == requestID {
		return nil
	}
	discarded = s.current
	s.current = &ReasonDraft{RequestID: requestID}
	return discarded
}

// Update replaces the draft text
func (s *DraftSlot) Update(reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNoActiveDraft
	}
	s.current = &ReasonDraft{RequestID: s.current.RequestID, Reason: reason}
	return nil
}

// Current returns a copy of the active draft
func (s *DraftSlot) Current() (ReasonDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ReasonDraft{}, false
	}
	return *s.current, true
}

// Cancel empties the slot
func (s *DraftSlot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// ClearIf empties the slot only if it still holds the draft for requestID.
// A draft begun for another request in the meantime is left alone.
func (s *DraftSlot) ClearIf(requestID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.RequestID != requestID {
		return false
	}
	s.current = nil
	return true
}
