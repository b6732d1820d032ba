package runtime

import "chat-hub/domain"

// ConversationStore keeps one append-only thread per unordered pair of
// usernames. Threads appear implicitly on first message and are never
// destroyed. Single-writer owned, no lock.
type ConversationStore struct {
	threads map[string][]domain.DirectMessage
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{threads: make(map[string][]domain.DirectMessage)}
}

// Append stores a message in the canonical thread for (a, b) and
// returns it for delivery.
func (s *ConversationStore) Append(a, b string, message domain.DirectMessage) domain.DirectMessage {
	key := domain.PairKey(a, b)
	s.threads[key] = append(s.threads[key], message)
	return message
}

// HistoryFor returns the thread for (a, b) in send order. A pair that
// has never talked yields an empty history, not an error.
func (s *ConversationStore) HistoryFor(a, b string) []domain.DirectMessage {
	history, ok := s.threads[domain.PairKey(a, b)]
	if !ok {
		return []domain.DirectMessage{}
	}
	out := make([]domain.DirectMessage, len(history))
	copy(out, history)
	return out
}

// Snapshot exports all threads keyed by their canonical pair key.
func (s *ConversationStore) Snapshot() map[string][]domain.DirectMessage {
	out := make(map[string][]domain.DirectMessage, len(s.threads))
	for key, history := range s.threads {
		copied := make([]domain.DirectMessage, len(history))
		copy(copied, history)
		out[key] = copied
	}
	return out
}

// Restore replaces the store content with a loaded snapshot.
func (s *ConversationStore) Restore(threads map[string][]domain.DirectMessage) {
	s.threads = make(map[string][]domain.DirectMessage, len(threads))
	for key, history := range threads {
		s.threads[key] = history
	}
}
