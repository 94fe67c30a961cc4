// Package session persists the console's session record across
// invocations inside one session scope.
//
// A Store never fails loudly: a save that cannot be written, or a record
// that cannot be read back whole, is logged and treated as absent. The
// session controller is the only caller.
package session

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/videotec/internal/client/models"
	"github.com/dmitrijs2005/videotec/internal/logging"
)

// Keys under which a record is stored inside its scope.
const (
	KeyAccessToken = "access_token"
	KeyUserData    = "user_data"
)

type Store interface {
	// Save overwrites the record of the scope.
	Save(ctx context.Context, rec models.PersistedRecord)
	// Load returns nil when no complete record is stored.
	Load(ctx context.Context) *models.PersistedRecord
	// Clear removes the record. It is idempotent.
	Clear(ctx context.Context)
}

func encodeProfile(p models.UserProfile) ([]byte, error) {
	return json.Marshal(p)
}

// decodeRecord rebuilds a record from the two stored values. It returns nil
// if either value is missing or the profile does not decode.
func decodeRecord(ctx context.Context, log logging.Logger, token, data []byte) *models.PersistedRecord {
	if len(token) == 0 || len(data) == 0 {
		if len(token) != 0 || len(data) != 0 {
			log.Warn(ctx, "partial session record ignored",
				"has_token", len(token) != 0, "has_profile", len(data) != 0)
		}
		return nil
	}

	var profile models.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		log.Warn(ctx, "corrupt session profile ignored", "error", err)
		return nil
	}

	return &models.PersistedRecord{Credential: string(token), ProfileSnapshot: profile}
}
