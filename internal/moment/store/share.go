package store

import (
	"fmt"
	"log"

	"moments-backend/internal/moment/domain"
)

// ShareResult reports the partial-failure outcome of a share operation.
// Count is the number of notifications delivered, Total the number of
// eligible recipients.
type ShareResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// ShareMoment invites the given emails to collaborate on a moment. Addresses
// are normalized and deduplicated, merged into the existing collaborator
// list, and every new or previously declined collaborator is set back to
// pending. Accepted collaborators keep their status. Notification delivery is
// best effort per recipient and never rolls back the sharing update.
func (s *Store) ShareMoment(momentID, sharerEmail string, emails []string) ShareResult {
	sharer := domain.NormalizeEmail(sharerEmail)

	seen := map[string]bool{}
	var recipients []string
	for _, e := range emails {
		n := domain.NormalizeEmail(e)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		recipients = append(recipients, n)
	}
	if len(recipients) == 0 {
		return ShareResult{Message: "No recipients provided"}
	}

	current, err := s.moments.FindByID(momentID)
	if err != nil {
		log.Printf("[EventStore] share fetch failed: %v", err)
		return ShareResult{Message: fmt.Sprintf("Failed to load moment: %v", err)}
	}
	if current == nil {
		return ShareResult{Message: "Moment not found"}
	}

	// Merge into the existing collaborator list, preserving order
	merged := map[string]bool{}
	var sharedWith []string
	for _, e := range current.SharedWith {
		n := domain.NormalizeEmail(e)
		if n == "" || merged[n] {
			continue
		}
		merged[n] = true
		sharedWith = append(sharedWith, n)
	}

	statuses := map[string]domain.CollaboratorStatus{}
	for email, st := range current.SharedWithStatus {
		statuses[domain.NormalizeEmail(email)] = st
	}

	for _, email := range recipients {
		if !merged[email] {
			merged[email] = true
			sharedWith = append(sharedWith, email)
		}
		// A re-invite resets declined back to pending; accepted stays
		if st, ok := statuses[email]; !ok || st == domain.CollaboratorDeclined {
			statuses[email] = domain.CollaboratorPending
		}
	}

	// Every collaborator carries a status entry; rows written before the
	// status map existed may have bare emails in shared_with.
	for _, email := range sharedWith {
		if _, ok := statuses[email]; !ok {
			statuses[email] = domain.CollaboratorPending
		}
	}

	updated, err := s.moments.UpdateSharing(momentID, sharedWith, statuses)
	if err != nil {
		log.Printf("[EventStore] share update failed: %v", err)
		return ShareResult{Message: fmt.Sprintf("Failed to update moment: %v", err)}
	}
	if updated == nil {
		return ShareResult{Message: "Moment not found"}
	}

	s.mu.Lock()
	for i := range s.state.Events {
		if s.state.Events[i].ID == momentID {
			s.state.Events[i].SharedWith = updated.SharedWith
			s.state.Events[i].SharedWithStatus = updated.SharedWithStatus
			s.state.Events[i].LastEdited = updated.LastEdited
			break
		}
	}
	s.mu.Unlock()
	s.persist()

	// The sharer never invites themselves
	var eligible []string
	for _, email := range recipients {
		if email != sharer {
			eligible = append(eligible, email)
		}
	}
	if len(eligible) == 0 {
		return ShareResult{Message: "No eligible recipients to notify"}
	}

	sent := 0
	for _, email := range eligible {
		n := &domain.Notification{
			Recipient: email,
			Sender:    sharer,
			Message:   fmt.Sprintf("%s invited you to collaborate on %q", sharer, updated.Title),
			Link:      "/event/" + momentID,
		}
		if err := s.notifications.Insert(n); err != nil {
			log.Printf("[EventStore] invite notification for %s failed: %v", email, err)
			continue
		}
		sent++
	}

	if sent == len(eligible) {
		return ShareResult{
			Success: true,
			Count:   sent,
			Total:   len(eligible),
			Message: fmt.Sprintf("Invitation sent to %d recipient(s)", sent),
		}
	}
	return ShareResult{
		Success: sent > 0,
		Count:   sent,
		Total:   len(eligible),
		Message: fmt.Sprintf("Sent %d of %d invitations", sent, len(eligible)),
	}
}

// RespondToInvitation records an accept or decline for the given user. The
// membership check is advisory: it trusts the locally known collaborator
// list, while the database policy has the final say. Accepting as a
// non-owner also flips the moment back to active. On success the events are
// refetched so the viewer-relative status is recomputed.
func (s *Store) RespondToInvitation(momentID, userID, userEmail string, decision domain.CollaboratorStatus) error {
	if decision != domain.CollaboratorAccepted && decision != domain.CollaboratorDeclined {
		return ErrInvalidDecision
	}
	email := domain.NormalizeEmail(userEmail)

	m, err := s.moments.FindByID(momentID)
	if err != nil {
		return fmt.Errorf("failed to load moment: %w", err)
	}
	if m == nil {
		return ErrMomentNotFound
	}

	isOwner := m.UserID == userID
	invited := false
	for _, e := range m.SharedWith {
		if domain.NormalizeEmail(e) == email {
			invited = true
			break
		}
	}
	if !invited && !isOwner {
		return ErrNotInvited
	}

	statuses := map[string]domain.CollaboratorStatus{}
	for k, v := range m.SharedWithStatus {
		statuses[domain.NormalizeEmail(k)] = v
	}
	statuses[email] = decision

	setActive := decision == domain.CollaboratorAccepted && !isOwner
	if err := s.moments.UpdateInvitation(momentID, statuses, setActive); err != nil {
		return fmt.Errorf("failed to update invitation: %w", err)
	}

	s.FetchMoments(userID, email)
	return nil
}
