package picker

import (
	"time"

	"github.com/KevDevLee/namens-tinder/internal/auth"
	"github.com/KevDevLee/namens-tinder/internal/db"
	"github.com/KevDevLee/namens-tinder/internal/domain"
	"github.com/KevDevLee/namens-tinder/internal/prefs"
	"github.com/KevDevLee/namens-tinder/internal/swipe"
)

// Request and response messages shared by the gRPC (JSON codec) and HTTP
// transports.

type SignUpRequest = auth.SignUpInput
type SignInRequest = auth.SignInInput
type SessionResponse = auth.Session

type AddNameRequest struct {
	Name   string `json:"name" binding:"required"`
	Gender string `json:"gender"`
}

type ListNamesRequest struct {
	Gender    string `json:"gender" form:"gender"`
	Letter    string `json:"letter" form:"letter" binding:"max=1"`
	PageToken string `json:"page_token" form:"page_token"`
	Limit     int    `json:"limit" form:"limit" binding:"gte=0"`
}

type ListNamesResponse struct {
	Names         []db.Name `json:"names"`
	NextPageToken string    `json:"next_page_token,omitempty"`
}

type RecordDecisionRequest struct {
	NameID   uint64 `json:"name_id" binding:"required"`
	Decision string `json:"decision" binding:"required"`
}

type ClearDecisionRequest struct {
	NameID uint64 `json:"name_id" binding:"required"`
}

type DeleteDecisionRequest struct {
	DecisionID uint64 `json:"decision_id" binding:"required"`
}

type DecisionResponse struct {
	ID       uint64          `json:"id"`
	NameID   uint64          `json:"name_id"`
	Decision domain.Decision `json:"decision"`
}

func toDecisionResponse(row db.Decision) *DecisionResponse {
	return &DecisionResponse{ID: row.ID, NameID: row.NameID, Decision: row.Decision}
}

type DecisionEntry struct {
	ID        uint64          `json:"id"`
	NameID    uint64          `json:"name_id"`
	Name      string          `json:"name"`
	Gender    domain.Gender   `json:"gender"`
	Decision  domain.Decision `json:"decision"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type MyDecisions struct {
	Like  []DecisionEntry `json:"like"`
	Maybe []DecisionEntry `json:"maybe"`
	Nope  []DecisionEntry `json:"nope"`
}

// PartnerDecisions is the read-only view of the other parent's latest
// decisions.
type PartnerDecisions struct {
	PartnerJoined bool        `json:"partner_joined"`
	Decisions     MyDecisions `json:"decisions"`
}

type Matches struct {
	Confirmed     []db.Name `json:"confirmed"`
	Maybe         []db.Name `json:"maybe"`
	PartnerJoined bool      `json:"partner_joined"`
}

type Counts struct {
	Like  int `json:"like"`
	Maybe int `json:"maybe"`
	Nope  int `json:"nope"`
}

type Stats struct {
	Names        int64                  `json:"names"`
	Roles        map[domain.Role]Counts `json:"roles"`
	Matches      int                    `json:"matches"`
	MaybeMatches int                    `json:"maybe_matches"`
}

type PreferencesMessage = prefs.Preferences

type ReloadResponse struct {
	Reload bool `json:"reload"`
}

type Empty struct{}

type SwipeDragRequest struct {
	Begin bool    `json:"begin"`
	DX    float64 `json:"dx"`
	DY    float64 `json:"dy"`
}

type SwipeGestureRequest = swipe.Gesture

type SwipeDecideRequest struct {
	Decision string `json:"decision" binding:"required"`
}

type SwipeResponse struct {
	View     swipe.View    `json:"view"`
	Commit   *swipe.Commit `json:"commit,omitempty"`
	Restored *swipe.Card   `json:"restored,omitempty"`
}
