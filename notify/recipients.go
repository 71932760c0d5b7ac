package notify

import (
	"sort"

	"github.com/google/uuid"
)

// Recipients computes who must be told about an attachment event: every
// observer of the area plus the internal user who originally uploaded the
// affected file, minus the user who performed the action themselves. The
// event type never changes the recipient set, only the message text.
func Recipients(observers []uuid.UUID, uploadOwner, actor *uuid.UUID) []uuid.UUID {
	set := make(map[uuid.UUID]struct{}, len(observers)+1)
	for _, id := range observers {
		set[id] = struct{}{}
	}
	if uploadOwner != nil {
		set[*uploadOwner] = struct{}{}
	}
	if actor != nil {
		delete(set, *actor)
	}

	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}
