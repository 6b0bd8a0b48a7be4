package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/duelrank/internal/api"
	"github.com/vytor/duelrank/internal/models"
	"github.com/vytor/duelrank/internal/rating"
	"github.com/vytor/duelrank/internal/repository/sqlite"
	"github.com/vytor/duelrank/internal/services"
	"github.com/vytor/duelrank/internal/session"
	"github.com/vytor/duelrank/internal/testutil"
	"github.com/vytor/duelrank/internal/testutil/mocks"
	"github.com/vytor/duelrank/internal/worker"
)

type APISuite struct {
	suite.Suite
	srv      *httptest.Server
	jobs     *mocks.MockJobQueue
	sessions services.SessionService
	closeDB  func()
}

func (s *APISuite) SetupTest() {
	sqlDB := testutil.NewTestDB(s.T())
	s.closeDB = func() { testutil.MustClose(s.T(), sqlDB) }

	stateRepo := sqlite.NewStateRepository(sqlDB)
	state, err := stateRepo.Load(context.Background(), rating.DefaultConfig())
	s.Require().NoError(err)

	rec := session.NewRecorder(&testutil.SeqIDs{}, testutil.NewTickClock())
	s.sessions = services.NewSessionService(state, stateRepo, rec)
	s.jobs = new(mocks.MockJobQueue)

	server := &api.Server{
		DB:                 sqlDB,
		SessionService:     s.sessions,
		LeaderboardService: services.NewLeaderboardService(s.sessions),
		RotationService:    services.NewRotationService(s.sessions),
		HistoryService:     services.NewHistoryService(sqlite.NewMatchRepository(sqlDB)),
		ImportService:      services.NewImportService(s.sessions, rec),
		JobQueue:           s.jobs,
		CORSOrigins:        []string{"*"},
	}
	s.srv = httptest.NewServer(server.Routes())
}

func (s *APISuite) TearDownTest() {
	s.srv.Close()
	s.closeDB()
}

func (s *APISuite) do(method, path string, body any) *http.Response {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.srv.URL+path, rdr)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *APISuite) decode(resp *http.Response, dst any) {
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(dst))
}

func (s *APISuite) errorCode(resp *http.Response) string {
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	s.decode(resp, &body)
	return body.Error.Code
}

func (s *APISuite) addPlayer(name string) models.Player {
	resp := s.do(http.MethodPost, "/api/players", map[string]string{"name": name})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var p models.Player
	s.decode(resp, &p)
	return p
}

func (s *APISuite) record(p1, p2 string, outcome models.Outcome) *http.Response {
	return s.do(http.MethodPost, "/api/matches", map[string]string{
		"player1_id": p1, "player2_id": p2, "outcome": string(outcome),
	})
}

func (s *APISuite) TestHealthAndReady() {
	resp := s.do(http.MethodGet, "/health", nil)
	s.Assert().Equal(http.StatusOK, resp.StatusCode)
	s.Assert().NotEmpty(resp.Header.Get("X-Request-ID"))

	resp = s.do(http.MethodGet, "/ready", nil)
	s.Assert().Equal(http.StatusOK, resp.StatusCode)
}

func (s *APISuite) TestPlayerLifecycle() {
	alice := s.addPlayer("Alice")
	s.Assert().Equal(1200, alice.Rating)

	resp := s.do(http.MethodPost, "/api/players", map[string]string{"name": "  "})
	s.Assert().Equal(http.StatusBadRequest, resp.StatusCode)
	s.Assert().Equal("INVALID_NAME", s.errorCode(resp))

	resp = s.do(http.MethodPatch, "/api/players/"+alice.ID, map[string]string{"name": "Alicia"})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var renamed models.Player
	s.decode(resp, &renamed)
	s.Assert().Equal("Alicia", renamed.Name)

	resp = s.do(http.MethodDelete, "/api/players/"+alice.ID, nil)
	s.Assert().Equal(http.StatusNoContent, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/players/"+alice.ID, nil)
	s.Assert().Equal(http.StatusNotFound, resp.StatusCode)
	s.Assert().Equal("PLAYER_NOT_FOUND", s.errorCode(resp))
}

func (s *APISuite) TestRecordMatch() {
	alice := s.addPlayer("Alice")
	bob := s.addPlayer("Bob")

	resp := s.record(alice.ID, bob.ID, models.OutcomePlayer1Win)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var m models.Match
	s.decode(resp, &m)
	s.Assert().Equal(1216, m.Player1RatingAfter)
	s.Assert().Equal(1184, m.Player2RatingAfter)
	s.Assert().Equal("Alice", m.Player1Name)

	resp = s.do(http.MethodGet, "/api/matches?player="+bob.ID, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var page struct {
		Matches []models.Match `json:"matches"`
		Total   int            `json:"total"`
	}
	s.decode(resp, &page)
	s.Assert().Equal(1, page.Total)
	s.Require().Len(page.Matches, 1)
	s.Assert().Equal(m.ID, page.Matches[0].ID)

	resp = s.do(http.MethodGet, "/api/matches/"+m.ID, nil)
	s.Assert().Equal(http.StatusOK, resp.StatusCode)
}

func (s *APISuite) TestRecordMatch_Preconditions() {
	alice := s.addPlayer("Alice")
	bob := s.addPlayer("Bob")

	tests := []struct {
		name    string
		p1, p2  string
		outcome models.Outcome
		status  int
		code    string
	}{
		{"missing selection", "", bob.ID, models.OutcomeDraw, http.StatusBadRequest, "MISSING_SELECTION"},
		{"same player", alice.ID, alice.ID, models.OutcomeDraw, http.StatusBadRequest, "SAME_PLAYER"},
		{"missing outcome", alice.ID, bob.ID, "", http.StatusBadRequest, "MISSING_OUTCOME"},
		{"unknown player", alice.ID, "ghost", models.OutcomeDraw, http.StatusNotFound, "PLAYER_NOT_FOUND"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp := s.record(tt.p1, tt.p2, tt.outcome)
			s.Assert().Equal(tt.status, resp.StatusCode)
			s.Assert().Equal(tt.code, s.errorCode(resp))
		})
	}
	s.Assert().Empty(s.sessions.Matches(context.Background()))
}

func (s *APISuite) TestLeaderboardOddsAndRotation() {
	alice := s.addPlayer("Alice")
	bob := s.addPlayer("Bob")
	carol := s.addPlayer("Carol")
	s.Require().Equal(http.StatusCreated, s.record(bob.ID, alice.ID, models.OutcomePlayer1Win).StatusCode)

	resp := s.do(http.MethodGet, "/api/leaderboard", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var rows []models.LeaderboardRow
	s.decode(resp, &rows)
	s.Require().Len(rows, 3)
	s.Assert().Equal("Bob", rows[0].Name)
	s.Assert().Equal(models.StreakWin, rows[0].StreakType)

	resp = s.do(http.MethodPost, "/api/leaderboard/refresh", nil)
	s.Assert().Equal(http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/odds?a="+alice.ID+"&b="+bob.ID, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var odds models.Odds
	s.decode(resp, &odds)
	s.Assert().Less(odds.ExpectedA, 0.5)

	resp = s.do(http.MethodGet, "/api/players/"+alice.ID+"/rotation", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var rot models.Rotation
	s.decode(resp, &rot)
	s.Assert().Equal(1, rot.Round)
	s.Require().Len(rot.Opponents, 1)
	s.Assert().Equal(carol.ID, rot.Opponents[0].PlayerID)
}

func (s *APISuite) TestCompareKFactors() {
	alice := s.addPlayer("Alice")
	bob := s.addPlayer("Bob")
	s.Require().Equal(http.StatusCreated, s.record(alice.ID, bob.ID, models.OutcomePlayer1Win).StatusCode)

	resp := s.do(http.MethodGet, "/api/compare", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var out []models.KFactorComparison
	s.decode(resp, &out)
	s.Require().Len(out, 3)
	s.Assert().Equal(20.0, out[0].KFactor)
	s.Assert().Equal(1210, out[0].Standings[0].Rating)
	s.Assert().Equal(1230, out[2].Standings[0].Rating)

	resp = s.do(http.MethodGet, "/api/compare?k=0,%2016", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var custom []models.KFactorComparison
	s.decode(resp, &custom)
	s.Require().Len(custom, 2)
	s.Assert().Equal(1208, custom[1].Standings[0].Rating)

	resp = s.do(http.MethodGet, "/api/compare?k=abc", nil)
	s.Assert().Equal(http.StatusBadRequest, resp.StatusCode)
	s.Assert().Equal("VALIDATION_ERROR", s.errorCode(resp))
}

func (s *APISuite) TestClearMatchesNeedsConfirmation() {
	alice := s.addPlayer("Alice")
	bob := s.addPlayer("Bob")
	s.Require().Equal(http.StatusCreated, s.record(alice.ID, bob.ID, models.OutcomeDraw).StatusCode)

	resp := s.do(http.MethodDelete, "/api/matches", nil)
	s.Assert().Equal(http.StatusConflict, resp.StatusCode)
	s.Assert().Equal("CONFIRMATION_REQUIRED", s.errorCode(resp))
	s.Assert().Len(s.sessions.Matches(context.Background()), 1)

	resp = s.do(http.MethodDelete, "/api/matches?confirm=true", nil)
	s.Assert().Equal(http.StatusNoContent, resp.StatusCode)
	s.Assert().Empty(s.sessions.Matches(context.Background()))
}

func (s *APISuite) TestSettings() {
	resp := s.do(http.MethodPut, "/api/settings", map[string]float64{"k_factor": 16})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/settings", nil)
	var cfg rating.Config
	s.decode(resp, &cfg)
	s.Assert().Equal(16.0, cfg.KFactor)

	resp = s.do(http.MethodPut, "/api/settings", map[string]float64{"k_factor": -3})
	s.Assert().Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.do(http.MethodPut, "/api/settings", map[string]string{})
	s.Assert().Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *APISuite) TestExportImportCSV() {
	alice := s.addPlayer("Alice")
	bob := s.addPlayer("Bob")
	s.Require().Equal(http.StatusCreated, s.record(alice.ID, bob.ID, models.OutcomePlayer2Win).StatusCode)
	want := s.sessions.State(context.Background())

	resp := s.do(http.MethodGet, "/api/export.csv", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Assert().Equal("text/csv", resp.Header.Get("Content-Type"))
	exported, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	s.Require().Equal(http.StatusNoContent, s.do(http.MethodDelete, "/api/matches?confirm=true", nil).StatusCode)

	req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/api/import.csv", bytes.NewReader(exported))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "text/csv")
	noConfirm, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	noConfirm.Body.Close()
	s.Assert().Equal(http.StatusConflict, noConfirm.StatusCode)

	req, err = http.NewRequest(http.MethodPost, s.srv.URL+"/api/import.csv?confirm=true", bytes.NewReader(exported))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "text/csv")
	imported, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer imported.Body.Close()
	s.Require().Equal(http.StatusOK, imported.StatusCode)

	s.Assert().Equal(want, s.sessions.State(context.Background()))
}

func (s *APISuite) TestImportCSVRejectsDuplicatePlayers() {
	s.addPlayer("Carol")

	req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/api/import.csv?confirm=true",
		strings.NewReader("#players\nid,name\nx,Alice\nx,Bob\n"))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "text/csv")
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Assert().Equal(http.StatusBadRequest, resp.StatusCode)
	s.Assert().Equal("BAD_REQUEST", s.errorCode(resp))
	players := s.sessions.Players(context.Background())
	s.Require().Len(players, 1)
	s.Assert().Equal("Carol", players[0].Name)
}

func (s *APISuite) TestImportDuelsIsQueued() {
	sheet := "title\nsub\nheader\n1,Alice,,Bob,,Alice\n"
	s.jobs.On("EnqueueDuelImport", "request body", []byte(sheet)).Return(nil).Once()

	resp, err := http.Post(s.srv.URL+"/api/import/duels?confirm=true", "text/csv", strings.NewReader(sheet))
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Assert().Equal(http.StatusAccepted, resp.StatusCode)
	s.jobs.AssertExpectations(s.T())
}

func (s *APISuite) TestImportDuelsQueueFull() {
	s.jobs.On("EnqueueDuelImport", mock.Anything, mock.Anything).Return(worker.ErrQueueFull)

	resp, err := http.Post(s.srv.URL+"/api/import/duels?confirm=true", "text/csv", strings.NewReader("x"))
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Assert().Equal(http.StatusServiceUnavailable, resp.StatusCode)
}

func (s *APISuite) TestImportSheet() {
	s.jobs.On("EnqueueSheetImport", "https://example.com/duels.csv").Return(nil).Once()

	resp := s.do(http.MethodPost, "/api/import/sheet?confirm=true", map[string]string{"url": "https://example.com/duels.csv"})
	s.Assert().Equal(http.StatusAccepted, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/import/sheet?confirm=true", map[string]string{"url": "file:///etc/passwd"})
	s.Assert().Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/import/sheet?confirm=true", map[string]string{"url": "http://169.254.169.254/latest"})
	s.Assert().Equal(http.StatusBadRequest, resp.StatusCode)
	s.Assert().Equal("VALIDATION_ERROR", s.errorCode(resp))

	resp = s.do(http.MethodPost, "/api/import/sheet", map[string]string{"url": "https://example.com/duels.csv"})
	s.Assert().Equal(http.StatusConflict, resp.StatusCode)
	s.jobs.AssertExpectations(s.T())
	s.jobs.AssertNumberOfCalls(s.T(), "EnqueueSheetImport", 1)
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func TestRecoveryMiddlewareReturnsJSON(t *testing.T) {
	server := &api.Server{CORSOrigins: []string{"*"}}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/players", nil)

	// SessionService is nil, so the handler panics.
	server.Routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "INTERNAL_ERROR")
}

func TestRequestIDHeader(t *testing.T) {
	server := &api.Server{CORSOrigins: []string{"*"}}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr := httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 65))
	rr = httptest.NewRecorder()
	server.Routes().ServeHTTP(rr, req)
	assert.Len(t, rr.Header().Get("X-Request-ID"), 36)
}
