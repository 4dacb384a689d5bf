package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/KevDevLee/namens-tinder/internal/app"
	"github.com/KevDevLee/namens-tinder/internal/auth"
	"github.com/KevDevLee/namens-tinder/internal/cache"
	"github.com/KevDevLee/namens-tinder/internal/config"
	"github.com/KevDevLee/namens-tinder/internal/db"
	"github.com/KevDevLee/namens-tinder/internal/domain"
	"github.com/KevDevLee/namens-tinder/internal/logger"
	"github.com/KevDevLee/namens-tinder/internal/server"
	"github.com/KevDevLee/namens-tinder/internal/service/picker"
)

type stack struct {
	picker *picker.Service
	auth   *auth.Service
	db     *gorm.DB
}

func setupStack(t *testing.T) stack {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = time.Hour

	appCtx := app.New(cfg, gdb, cache.NewRedisCache(cfg), logger.Discard())
	return stack{
		picker: picker.NewService(appCtx),
		auth:   auth.NewService(appCtx),
		db:     gdb,
	}
}

func dialBufnet(t *testing.T, s stack) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := server.NewGRPCServer(logger.Discard(), s.auth, picker.PublicMethods, picker.NewRegistrar(s.picker, s.auth))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(server.CodecName)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func invoke(ctx context.Context, conn *grpc.ClientConn, method string, in, out any) error {
	return conn.Invoke(ctx, "/"+picker.ServiceName+"/"+method, in, out)
}

func withToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func TestGRPC_SignUpRecordAndMatch(t *testing.T) {
	ctx := context.Background()
	s := setupStack(t)
	conn := dialBufnet(t, s)

	var papa, mama auth.Session
	require.NoError(t, invoke(ctx, conn, "SignUp",
		&picker.SignUpRequest{Email: "papa@example.com", Password: "secret1", Role: "papa"}, &papa))
	require.NoError(t, invoke(ctx, conn, "SignUp",
		&picker.SignUpRequest{Email: "mama@example.com", Password: "secret1", Role: "mama"}, &mama))

	err := invoke(ctx, conn, "SignUp",
		&picker.SignUpRequest{Email: "third@example.com", Password: "secret1", Role: "mama"}, &auth.Session{})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	var name db.Name
	require.NoError(t, invoke(withToken(ctx, papa.Token), conn, "AddName",
		&picker.AddNameRequest{Name: "Anna", Gender: "w"}, &name))
	assert.NotZero(t, name.ID)

	err = invoke(withToken(ctx, mama.Token), conn, "AddName",
		&picker.AddNameRequest{Name: "ANNA"}, &db.Name{})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	for _, tok := range []string{papa.Token, mama.Token} {
		var resp picker.DecisionResponse
		require.NoError(t, invoke(withToken(ctx, tok), conn, "RecordDecision",
			&picker.RecordDecisionRequest{NameID: name.ID, Decision: "like"}, &resp))
		assert.Equal(t, domain.Like, resp.Decision)
	}

	var matches picker.Matches
	require.NoError(t, invoke(withToken(ctx, mama.Token), conn, "ListMatches", &picker.Empty{}, &matches))
	require.Len(t, matches.Confirmed, 1)
	assert.Equal(t, "Anna", matches.Confirmed[0].Name)
	assert.Empty(t, matches.Maybe)

	var partner picker.PartnerDecisions
	require.NoError(t, invoke(withToken(ctx, papa.Token), conn, "ListPartnerDecisions", &picker.Empty{}, &partner))
	assert.True(t, partner.PartnerJoined)
	require.Len(t, partner.Decisions.Like, 1)
	assert.Equal(t, "Anna", partner.Decisions.Like[0].Name)
}

func TestGRPC_RequiresToken(t *testing.T) {
	ctx := context.Background()
	s := setupStack(t)
	conn := dialBufnet(t, s)

	err := invoke(ctx, conn, "ListMatches", &picker.Empty{}, &picker.Matches{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	err = invoke(withToken(ctx, "garbage"), conn, "Stats", &picker.Empty{}, &picker.Stats{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	err = invoke(ctx, conn, "SignIn", &picker.SignInRequest{Email: "nobody@example.com", Password: "secret1"}, &auth.Session{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestGRPC_SwipeFlow(t *testing.T) {
	ctx := context.Background()
	s := setupStack(t)
	conn := dialBufnet(t, s)

	sess, err := s.auth.SignUp(ctx, auth.SignUpInput{Email: "papa@example.com", Password: "secret1", Role: "papa"})
	require.NoError(t, err)
	require.NoError(t, s.db.Create(&db.Name{Name: "Ben", Gender: domain.Male}).Error)
	authed := withToken(ctx, sess.Token)

	var resp picker.SwipeResponse
	err = invoke(authed, conn, "SwipeCurrent", &picker.Empty{}, &resp)
	assert.Equal(t, codes.NotFound, status.Code(err))

	require.NoError(t, invoke(authed, conn, "StartSwipe", &picker.Empty{}, &resp))
	require.NotNil(t, resp.View.Current)
	assert.Equal(t, "Ben", resp.View.Current.Name)

	require.NoError(t, invoke(authed, conn, "SwipeDecide", &picker.SwipeDecideRequest{Decision: "nope"}, &resp))
	require.NotNil(t, resp.Commit)
	assert.Equal(t, "left", string(resp.Commit.Direction))

	err = invoke(authed, conn, "SwipeDecide", &picker.SwipeDecideRequest{Decision: "like"}, &picker.SwipeResponse{})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	var done picker.SwipeResponse
	require.NoError(t, invoke(authed, conn, "SwipeComplete", &picker.Empty{}, &done))
	assert.Nil(t, done.View.Current)
	assert.True(t, done.View.CanUndo)

	var undone picker.SwipeResponse
	require.NoError(t, invoke(authed, conn, "SwipeUndo", &picker.Empty{}, &undone))
	require.NotNil(t, undone.Restored)
	assert.Equal(t, "Ben", undone.Restored.Name)
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHTTP_API(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := setupStack(t)
	h := server.NewRouter(s.picker, s.auth, logger.Discard()).Setup()

	w := doJSON(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = doJSON(t, h, http.MethodGet, "/api/v1/names", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, h, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": "mama@example.com", "password": "secret1", "role": "mama",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sess auth.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))

	w = doJSON(t, h, http.MethodPost, "/api/v1/names", sess.Token, map[string]string{"name": "Clara", "gender": "w"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var name db.Name
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &name))

	w = doJSON(t, h, http.MethodPost, "/api/v1/names", sess.Token, map[string]string{"name": "clara"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, h, http.MethodPost, "/api/v1/decisions", sess.Token, map[string]any{"name_id": name.ID, "decision": "maybe"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, h, http.MethodPost, "/api/v1/decisions", sess.Token, map[string]any{"name_id": name.ID, "decision": "perhaps"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodGet, "/api/v1/decisions/me", sess.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine picker.MyDecisions
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	require.Len(t, mine.Maybe, 1)
	assert.Equal(t, "Clara", mine.Maybe[0].Name)

	w = doJSON(t, h, http.MethodGet, "/api/v1/decisions/partner", sess.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var partner picker.PartnerDecisions
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &partner))
	assert.False(t, partner.PartnerJoined)
	assert.Empty(t, partner.Decisions.Like)

	w = doJSON(t, h, http.MethodGet, "/api/v1/names?letter=%25", sess.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodGet, "/api/v1/stats", sess.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var st picker.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, picker.Counts{Maybe: 1}, st.Roles[domain.Mama])

	w = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/v1/names/%d/decision", name.ID), sess.Token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, h, http.MethodDelete, "/api/v1/decisions/abc", sess.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodPost, "/api/v1/swipe/complete", sess.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, h, http.MethodPost, "/api/v1/preferences/reload", sess.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reload picker.ReloadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reload))
	assert.True(t, reload.Reload)
}
