package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openai/openai-go/v3/option"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/programme-matcher/internal/assistant"
	"github.com/garyellow/programme-matcher/internal/config"
	"github.com/garyellow/programme-matcher/internal/logger"
	"github.com/garyellow/programme-matcher/internal/majorname"
	"github.com/garyellow/programme-matcher/internal/metrics"
	"github.com/garyellow/programme-matcher/internal/ratelimit"
	"github.com/garyellow/programme-matcher/internal/refdata"
	"github.com/garyellow/programme-matcher/internal/storage"
	"github.com/garyellow/programme-matcher/internal/warmup"
)

func referenceDocs() map[string][]byte {
	return map[string][]byte{
		refdata.KeyOccupations: []byte(`[
			{"occupation":"Software Developer","RIASEC_code":"IRC","work_value_code":"AIR","majors":["Computer Science at NUS"]},
			{"occupation":"Data Analyst","RIASEC_code":"IC","work_value_code":"ARS","majors":["Data Science at NTU"]},
			{"occupation":"Designer","RIASEC_code":"AES","work_value_code":null,"majors":null}
		]`),
		refdata.KeyPrefixMaps: []byte(`{
			"nus_prefix_to_major": {"CS": "Computer Science", "MA": "Mathematics"},
			"ntu_prefix_to_major": {"SC": "Data Science"},
			"smu_prefix_to_major": {}
		}`),
		refdata.CatalogKey(majorname.NUS): []byte(`[
			{"modulecode":"CS1010","title":"Programming Methodology","description":"Introductory programming in C."},
			{"modulecode":"CS2030","title":"Programming Methodology II","description":"Object-oriented programming."},
			{"modulecode":"CS2040","title":"Data Structures and Algorithms","description":"Lists, trees and graphs."},
			{"modulecode":"MA1521","title":"Calculus for Computing","description":"Limits and derivatives."}
		]`),
		refdata.CatalogKey(majorname.NTU): []byte(`[
			{"modulecode":"SC1003","title":"Introduction to Computational Thinking","description":"Python programming."}
		]`),
		refdata.CatalogKey(majorname.SMU): []byte(`[]`),
		refdata.QuestionKey("Computer_Science_NUS.json"): []byte(`[
			{"id":1,"criterion":"Interests","question":"Which problems do you enjoy solving?"},
			{"id":2,"criterion":"Skills","question":"Describe a program you wrote."},
			{"id":"q3","criterion":"Background","question":"What computing experience do you have?"}
		]`),
	}
}

type testEnv struct {
	router *gin.Engine
	server *Server
	db     *storage.DB
}

func newTestEnv(t *testing.T, mutate func(*ServerConfig)) *testEnv {
	t.Helper()

	db, err := storage.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logger.NewWithWriter("error", io.Discard)
	m := metrics.New(prometheus.NewRegistry())
	cfg := ServerConfig{
		Store:   refdata.NewStore(refdata.NewMemorySource(referenceDocs()), refdata.WithMetrics(m)),
		DB:      db,
		Metrics: m,
		Logger:  log,
		NewRand: func() *rand.Rand { return rand.New(rand.NewPCG(7, 11)) },
	}
	if mutate != nil {
		mutate(&cfg)
	}

	srv := NewServer(cfg)
	return &testEnv{router: NewRouter(srv, log), server: srv, db: db}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

var scores = map[string]any{
	"riasec": []map[string]any{
		{"component": "Investigative", "score": 9},
		{"component": "Realistic", "score": 8},
		{"component": "Conventional", "score": 7},
		{"component": "Artistic", "score": 1},
	},
	"workValues": []map[string]any{
		{"component": "Achievement", "score": 9},
		{"component": "Independence", "score": 8},
		{"component": "Relationships", "score": 7},
	},
}

func TestLivenessCheck(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/livez", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alive", decode[map[string]any](t, w)["status"])
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/livez", nil, RequestIDHeader, "req-123")
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}

func TestReadinessCheck(t *testing.T) {
	t.Parallel()

	ready := newTestEnv(t, nil)
	w := ready.do(t, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, "memory", body["source"])

	warming := newTestEnv(t, func(c *ServerConfig) {
		c.Readiness = warmup.NewReadinessState(time.Hour)
	})
	w = warming.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReadinessCheck_DatabaseDown(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	_ = env.db.Close()

	w := env.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCodes(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/codes", scores)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[codesResponse](t, w)
	assert.Equal(t, codesResponse{RIASECCode: "IRC", WorkValueCode: "AIR"}, got)
}

func TestCodes_Validation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/codes", map[string]any{
		"riasec": []map[string]any{{"component": "", "score": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/codes", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMajors(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/majors", map[string]string{"riasecCode": "IRC", "workValueCode": "AIR"})
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string]any](t, w)
	assert.Equal(t, "exact", got["matchType"])
	assert.Equal(t, []any{"Computer Science at NUS"}, got["exactMatches"])
	assert.Equal(t, []any{}, got["permutationMatches"])
	assert.Equal(t, []any{"Computer_Science_NUS.json"}, got["questionFiles"])
}

func TestMajors_NoMatch(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/majors", map[string]string{"riasecCode": "SEC", "workValueCode": "W"})
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string]any](t, w)
	assert.Equal(t, "none", got["matchType"])
	assert.Equal(t, []any{}, got["exactMatches"])
}

func TestModules(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/modules", map[string]any{
		"recommendations": map[string]any{
			"exactMatches":     []string{"Computer Science at NUS"},
			"riasecMatches":    []string{"Data Science at NTU", "Philosophy"},
			"workValueMatches": []string{},
		},
		"modulesPerMajor": 3,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Modules []struct {
			Code string `json:"modulecode"`
		} `json:"modules"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	var codes []string
	for _, m := range body.Modules {
		codes = append(codes, m.Code)
	}
	assert.Equal(t, []string{"CS1010", "CS2030", "CS2040", "SC1003"}, codes)
}

func TestModules_MissingCatalogYieldsEmptyList(t *testing.T) {
	t.Parallel()
	docs := referenceDocs()
	delete(docs, refdata.CatalogKey(majorname.NUS))
	env := newTestEnv(t, func(c *ServerConfig) {
		c.Store = refdata.NewStore(refdata.NewMemorySource(docs))
	})

	w := env.do(t, http.MethodPost, "/api/v1/modules", map[string]any{
		"recommendations": map[string]any{"exactMatches": []string{"Computer Science at NUS", "Data Science at NTU"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"modules":[]}`, w.Body.String())
}

func TestRecommendations(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/recommendations", scores)
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		RIASECCode    string `json:"riasecCode"`
		WorkValueCode string `json:"workValueCode"`
		Majors        struct {
			MatchType string `json:"matchType"`
		} `json:"majors"`
		Modules []struct {
			Code string `json:"modulecode"`
		} `json:"modules"`
		QuestionBanks []struct {
			Major     string `json:"major"`
			Filename  string `json:"filename"`
			Questions []any  `json:"questions"`
		} `json:"questionBanks"`
		Quiz    []map[string]any `json:"quiz"`
		Profile struct {
			Strengths       []string `json:"strengths"`
			WorkPreferences []string `json:"workPreferences"`
		} `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))

	assert.Equal(t, "IRC", got.RIASECCode)
	assert.Equal(t, "AIR", got.WorkValueCode)
	assert.Equal(t, "exact", got.Majors.MatchType)
	require.Len(t, got.Modules, 2)
	assert.Equal(t, "CS1010", got.Modules[0].Code)
	assert.Equal(t, "CS2030", got.Modules[1].Code)
	require.Len(t, got.QuestionBanks, 1)
	assert.Equal(t, "Computer_Science_NUS.json", got.QuestionBanks[0].Filename)
	assert.Len(t, got.QuestionBanks[0].Questions, 3)
	assert.Len(t, got.Quiz, 3)
	assert.NotEmpty(t, got.Profile.Strengths)
	assert.NotEmpty(t, got.Profile.WorkPreferences)
}

func TestFilename(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/v1/filenames?major=Arts+%26+Humanities+at+NUS", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string]string](t, w)
	assert.Equal(t, "Arts_and_Humanities_NUS.json", got["filename"])
	assert.Equal(t, "Arts & Humanities", got["displayName"])

	w = env.do(t, http.MethodGet, "/api/v1/filenames", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearch(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/v1/modules/search?q=calculus", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Results []struct {
			Module struct {
				Code string `json:"modulecode"`
			} `json:"module"`
			Score float64 `json:"score"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotEmpty(t, got.Results)
	assert.Equal(t, "MA1521", got.Results[0].Module.Code)
	assert.Positive(t, got.Results[0].Score)

	w = env.do(t, http.MethodGet, "/api/v1/modules/search?institution=NTU", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SC1003")
	assert.NotContains(t, w.Body.String(), "CS1010")

	w = env.do(t, http.MethodGet, "/api/v1/modules/search?q=zzzz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"query":"zzzz","results":[]}`, w.Body.String())
}

func TestSearch_Validation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/modules/search?institution=MIT", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/modules/search?limit=0x", nil).Code)
}

func TestRatingsAndFinalSelections(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	const base = "/api/v1/users/u-1"

	ratings := map[string]int{
		"CS1010": 9, "CS2030": 7, "CS2040": 10, "MA1521": 8, "SC1003": 7, "CS3230": 3,
	}
	for code, r := range ratings {
		w := env.do(t, http.MethodPost, base+"/ratings", map[string]any{"moduleCode": code, "rating": r})
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	}

	w := env.do(t, http.MethodGet, base+"/ratings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stored struct {
		Ratings []storage.ModuleRating `json:"ratings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Len(t, stored.Ratings, len(ratings))

	modules := []map[string]any{
		{"modulecode": "CS1010", "title": "Programming Methodology", "institution": "NUS"},
		{"modulecode": "CS2030", "title": "Programming Methodology II", "institution": "NUS"},
		{"modulecode": "CS2040", "title": "Data Structures and Algorithms", "institution": "NUS"},
		{"modulecode": "MA1521", "title": "Calculus for Computing", "institution": "NUS"},
		{"modulecode": "SC1003", "title": "Introduction to Computational Thinking", "institution": "NTU"},
		{"modulecode": "CS3230", "title": "Design and Analysis of Algorithms", "institution": "NUS"},
	}
	w = env.do(t, http.MethodPost, base+"/final-selections", map[string]any{"modules": modules})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var final struct {
		Selections []storage.ModuleSelection `json:"selections"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &final))
	var codes []string
	for _, s := range final.Selections {
		codes = append(codes, s.ModuleCode)
	}
	assert.Equal(t, []string{"CS2040", "CS1010", "MA1521", "CS2030", "SC1003"}, codes)
	assert.Equal(t, "Rated 10/10 based on your preferences", final.Selections[0].Reason)

	w = env.do(t, http.MethodGet, base+"/selections", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CS2040")
}

func TestFinalSelections_NotEnoughRatings(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/users/u-2/ratings", map[string]any{"moduleCode": "CS1010", "rating": 9})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/users/u-2/final-selections", map[string]any{
		"modules": []map[string]any{{"modulecode": "CS1010", "institution": "NUS"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRateModule_Validation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	tests := []map[string]any{
		{"moduleCode": "CS1010", "rating": 11},
		{"moduleCode": "CS1010", "rating": 0},
		{"moduleCode": "", "rating": 5},
		{"moduleCode": "CS1010", "rating": 5, "institution": "MIT"},
	}
	for _, body := range tests {
		w := env.do(t, http.MethodPost, "/api/v1/users/u-3/ratings", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestSaveSelections(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPut, "/api/v1/users/u-4/selections", map[string]any{
		"selections": []map[string]any{
			{"moduleCode": "MA1521", "institution": "NUS", "title": "Calculus for Computing"},
			{"moduleCode": "CS1010", "institution": "NUS"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got struct {
		Selections []storage.ModuleSelection `json:"selections"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Selections, 2)
	assert.Equal(t, "MA1521", got.Selections[0].ModuleCode)
	assert.Equal(t, "CS1010", got.Selections[1].ModuleCode)
}

func TestAssistant_Disabled(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/v1/assistant", map[string]any{"prompt": "hello"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAssistant_RateLimitedPerUser(t *testing.T) {
	t.Parallel()

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c","object":"chat.completion","created":1,"model":"deepseek-chat",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Try Data Science."}}],
			"usage":{"prompt_tokens":3,"completion_tokens":3,"total_tokens":6}}`))
	}))
	t.Cleanup(provider.Close)

	limiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{Name: "assistant", Burst: 1, DailyLimit: 50})
	t.Cleanup(limiter.Stop)

	env := newTestEnv(t, func(c *ServerConfig) {
		c.Assistant = assistant.New(config.AssistantConfig{
			APIKey:  "k",
			BaseURL: provider.URL,
			Model:   "deepseek-chat",
		}, c.Metrics, option.WithMaxRetries(0))
		c.Limiter = limiter
	})

	w := env.do(t, http.MethodPost, "/api/v1/assistant", map[string]any{"prompt": "What should I study?"}, UserIDHeader, "alice")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Try Data Science.")

	w = env.do(t, http.MethodPost, "/api/v1/assistant", map[string]any{"prompt": "And then?"}, UserIDHeader, "alice")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/assistant", map[string]any{"prompt": "Hi"}, UserIDHeader, "bob")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/assistant", map[string]any{"prompt": ""}, UserIDHeader, "carol")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
