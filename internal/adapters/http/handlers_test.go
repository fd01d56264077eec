package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Gavel/internal/adapters/feed"
	"github.com/dkeye/Gavel/internal/app"
	"github.com/dkeye/Gavel/internal/config"
	"github.com/dkeye/Gavel/internal/permission"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Mode: "test", Secret: "test-secret", SeatCount: 6}
	engine := permission.NewEngine(permission.DefaultRules()...)
	manager := app.NewManager(engine, app.Options{ListingDelay: 10 * time.Millisecond})
	return SetupRouter(cfg, manager, app.NewRegistry(), feed.NewHub())
}

// do issues a request as a fixed client identity via the token cookie.
func do(r *gin.Engine, token, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.AddCookie(&http.Cookie{Name: "ct", Value: token})
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAndInspectRoom(t *testing.T) {
	req := require.New(t)
	r := newTestRouter(t)

	// Creating a room promotes the caller to host
	w := do(r, "owner-token", http.MethodPost, "/api/rooms", `{"name":"night sale"}`)
	req.Equal(http.StatusCreated, w.Code)

	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &created))
	req.Equal("night sale", created.Name)

	w = do(r, "owner-token", http.MethodGet, "/api/rooms/"+created.ID, "")
	req.Equal(http.StatusOK, w.Code)

	var snap struct {
		Phase        string            `json:"phase"`
		CurrentPrice int64             `json:"current_price"`
		Seats        []json.RawMessage `json:"seats"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &snap))
	req.Equal("preparing", snap.Phase)
	req.Len(snap.Seats, 6)

	// Unknown rooms are a 404
	w = do(r, "owner-token", http.MethodGet, "/api/rooms/unknown", "")
	req.Equal(http.StatusNotFound, w.Code)
}

func TestPermissionDeniedMapsToForbidden(t *testing.T) {
	req := require.New(t)
	r := newTestRouter(t)

	w := do(r, "owner-token", http.MethodPost, "/api/rooms", `{"name":"night sale"}`)
	req.Equal(http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"id"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &created))

	// A guest viewer joins and tries to upload a lot
	w = do(r, "guest-token", http.MethodPost, "/api/rooms/"+created.ID+"/join", "")
	req.Equal(http.StatusNoContent, w.Code)

	w = do(r, "guest-token", http.MethodPost, "/api/rooms/"+created.ID+"/items", `{"name":"vase"}`)
	req.Equal(http.StatusForbidden, w.Code)
	req.Contains(w.Body.String(), "permission_denied")

	// Leaving a seat you do not hold maps to a conflict
	w = do(r, "guest-token", http.MethodDelete, "/api/rooms/"+created.ID+"/microphone", "")
	req.Equal(http.StatusConflict, w.Code)
}

func TestFullAuctionOverHTTP(t *testing.T) {
	req := require.New(t)
	r := newTestRouter(t)

	w := do(r, "owner-token", http.MethodPost, "/api/rooms", `{"name":"night sale"}`)
	req.Equal(http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"id"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &created))
	base := "/api/rooms/" + created.ID

	// An auctioneer joins, takes a seat and uploads a lot
	w = do(r, "auc-token", http.MethodPut, "/api/profile", `{"nickname":"auctioneer","role":"auctioneer"}`)
	req.Equal(http.StatusOK, w.Code)
	req.Equal(http.StatusNoContent, do(r, "auc-token", http.MethodPost, base+"/join", "").Code)
	req.Equal(http.StatusOK, do(r, "auc-token", http.MethodPost, base+"/microphone", "").Code)
	req.Equal(http.StatusNoContent, do(r, "auc-token", http.MethodPost, base+"/items", `{"name":"vase","start_price":100,"increment_step":10}`).Code)

	// The owner starts; listing auto-advances into auctioning
	req.Equal(http.StatusNoContent, do(r, "owner-token", http.MethodPost, base+"/start", "").Code)
	req.Eventually(func() bool {
		w := do(r, "owner-token", http.MethodGet, base, "")
		return strings.Contains(w.Body.String(), `"phase":"auctioning"`)
	}, time.Second, 10*time.Millisecond)

	// A bidder joins and bids above the floor
	w = do(r, "bid-token", http.MethodPut, "/api/profile", `{"nickname":"bidder","role":"bidder"}`)
	req.Equal(http.StatusOK, w.Code)
	req.Equal(http.StatusNoContent, do(r, "bid-token", http.MethodPost, base+"/join", "").Code)

	w = do(r, "bid-token", http.MethodPost, base+"/bids", `{"amount":109}`)
	req.Equal(http.StatusForbidden, w.Code)

	w = do(r, "bid-token", http.MethodPost, base+"/bids", `{"amount":120}`)
	req.Equal(http.StatusOK, w.Code)
	req.Contains(w.Body.String(), `"current_price":120`)

	// Hammer down
	req.Equal(http.StatusNoContent, do(r, "owner-token", http.MethodPost, base+"/end", "").Code)
	w = do(r, "owner-token", http.MethodGet, base, "")
	req.Contains(w.Body.String(), `"phase":"closed"`)
}
