package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/sprintdeck/sprintdeck/internal/store"
	"github.com/sprintdeck/sprintdeck/pkg/types"
)

// ResultsPayload summarizes a revealed round; it lives in the "results"
// canvas object.
type ResultsPayload struct {
	VoteCount    int            `json:"voteCount"`
	Average      *float64       `json:"average,omitempty"`
	Distribution map[string]int `json:"distribution"`
}

// CastVote upserts the member's ballot. Valid in either round state: casting
// after reveal overwrites the already-revealed vote, a deliberate allowance
// for late corrections. Broadcasts the full sanitized vote list.
func (e *Engine) CastVote(ctx context.Context, roomID, memberID string, label, icon *string, value *float64) (*types.Vote, error) {
	room, err := e.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	member, err := e.store.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member.RoomID != roomID {
		return nil, ErrNotAMember
	}
	if member.IsObserver {
		return nil, ErrObserverVote
	}

	now := e.now().UTC()
	vote := &store.Vote{
		RoomID:   roomID,
		MemberID: memberID,
		Label:    label,
		Value:    value,
		Icon:     icon,
		CastAt:   now,
	}
	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.UpsertVote(ctx, vote); err != nil {
			return err
		}
		return tx.TouchRoom(ctx, roomID, now)
	})
	if err != nil {
		return nil, err
	}

	e.broadcastVotes(ctx, room, types.EvtVoteCast)
	dto := voteDTO(vote, room.IsGameOver)
	return &dto, nil
}

// ClearVote deletes one member's ballot and broadcasts the updated list.
func (e *Engine) ClearVote(ctx context.Context, roomID, memberID string) error {
	room, err := e.store.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}

	now := e.now().UTC()
	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.DeleteVote(ctx, roomID, memberID); err != nil {
			return err
		}
		return tx.TouchRoom(ctx, roomID, now)
	})
	if err != nil {
		return err
	}

	e.broadcastVotes(ctx, room, types.EvtVoteCast)
	return nil
}

// Reveal transitions the round to Revealed. Idempotent if already revealed.
// Creates or updates the results canvas object and, when the room has an
// active story, labels the external ticket with the consensus estimate.
func (e *Engine) Reveal(ctx context.Context, roomID string) error {
	room, err := e.store.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.IsGameOver {
		return nil
	}

	votes, err := e.store.ListVotes(ctx, roomID)
	if err != nil {
		return err
	}
	results := summarize(votes)
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode results payload: %w", err)
	}

	now := e.now().UTC()
	err = e.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.SetGameOver(ctx, roomID, true); err != nil {
			return err
		}
		if err := tx.UpsertCanvasObject(ctx, &store.CanvasObject{
			RoomID:        roomID,
			ObjectID:      ResultsObjectID,
			Kind:          KindResults,
			X:             480,
			Y:             -200,
			Payload:       datatypes.JSON(payload),
			LastUpdatedBy: "system",
			LastUpdatedAt: now,
		}); err != nil {
			return err
		}
		return tx.TouchRoom(ctx, roomID, now)
	})
	if err != nil {
		return err
	}

	if room.ActiveStoryID != nil {
		if label := consensusLabel(votes); label != "" {
			if err := e.labeler.LabelTicket(ctx, *room.ActiveStoryID, label); err != nil {
				e.log.Warn("ticket labeling failed",
					zap.String("room_id", roomID),
					zap.String("story_id", *room.ActiveStoryID),
					zap.Error(err))
			}
		}
	}

	room.IsGameOver = true
	e.broadcastVotes(ctx, room, types.EvtVoteRevealed)
	return nil
}

// Reset transitions back to Open, deleting every vote in the room. Calling it
// while already Open just clears votes. The results object stays behind for
// client-side cleanup.
func (e *Engine) Reset(ctx context.Context, roomID string) error {
	if _, err := e.store.GetRoom(ctx, roomID); err != nil {
		return err
	}

	now := e.now().UTC()
	err := e.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.DeleteVotesForRoom(ctx, roomID); err != nil {
			return err
		}
		if err := tx.SetGameOver(ctx, roomID, false); err != nil {
			return err
		}
		return tx.TouchRoom(ctx, roomID, now)
	})
	if err != nil {
		return err
	}

	e.notify(roomID, types.EvtVoteReset, map[string]string{"roomId": roomID})
	return nil
}

// broadcastVotes publishes the room's current vote list, sanitized for the
// room's round state. Failures stop at the hub boundary.
func (e *Engine) broadcastVotes(ctx context.Context, room *store.Room, event string) {
	votes, err := e.voteList(ctx, room)
	if err != nil {
		e.log.Warn("vote list for broadcast failed",
			zap.String("room_id", room.ID), zap.Error(err))
		return
	}
	e.notify(room.ID, event, votes)
}

func summarize(votes []store.Vote) ResultsPayload {
	results := ResultsPayload{Distribution: map[string]int{}}
	var sum float64
	var numeric int
	for _, v := range votes {
		if v.Label == nil {
			continue
		}
		results.VoteCount++
		results.Distribution[*v.Label]++
		if v.Value != nil {
			sum += *v.Value
			numeric++
		}
	}
	if numeric > 0 {
		avg := sum / float64(numeric)
		results.Average = &avg
	}
	return results
}

// consensusLabel picks the most common vote label, breaking ties by the
// lexicographically smaller label so the choice is deterministic.
func consensusLabel(votes []store.Vote) string {
	counts := map[string]int{}
	for _, v := range votes {
		if v.Label != nil {
			counts[*v.Label]++
		}
	}
	best := ""
	bestCount := 0
	for label, count := range counts {
		if count > bestCount || (count == bestCount && label < best) {
			best = label
			bestCount = count
		}
	}
	return best
}
