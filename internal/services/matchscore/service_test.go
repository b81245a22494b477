// internal/services/matchscore/service_test.go
package matchscore

import (
	"context"
	"errors"
	"testing"

	"jobboard/internal/common/genai"
	"jobboard/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type fakeGenerator struct {
	response string
	err      error
	calls    int
}

func (f *fakeGenerator) Generate(ctx context.Context, parts []genai.Part) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisCache(client), mr
}

func expectJobAndCandidate(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT title, job_description, skills_required FROM jobs`).
		WithArgs("job-001").
		WillReturnRows(sqlmock.NewRows([]string{"title", "job_description", "skills_required"}).
			AddRow("Backend Engineer", "Build APIs", "{Go,PostgreSQL}"))
	mock.ExpectQuery(`SELECT experience, education, skills FROM candidates`).
		WithArgs("cand-001").
		WillReturnRows(sqlmock.NewRows([]string{"experience", "education", "skills"}).
			AddRow("5 years backend", "BSc CS", "{Go,Redis}"))
}

func TestService_Score_ComputesAndCaches(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	cache, mr := newTestCache(t)
	gen := &fakeGenerator{response: `{"score": 87}`}
	svc := NewService(db, cache, gen, logger.NewNop())

	expectJobAndCandidate(mock)

	score, err := svc.Score(context.Background(), "job-001", "cand-001")

	assert.NoError(t, err)
	assert.Equal(t, 87, score)
	assert.Equal(t, 1, gen.calls)

	cached, err := mr.Get("match_score:job-001:cand-001")
	assert.NoError(t, err)
	assert.Equal(t, "87", cached)

	// No expiry on the cached entry.
	assert.Equal(t, int64(0), int64(mr.TTL("match_score:job-001:cand-001")))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Score_CacheHitSkipsModel(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	cache, mr := newTestCache(t)
	mr.Set("match_score:job-001:cand-001", "42")

	gen := &fakeGenerator{response: `{"score": 99}`}
	svc := NewService(db, cache, gen, logger.NewNop())

	score, err := svc.Score(context.Background(), "job-001", "cand-001")

	assert.NoError(t, err)
	assert.Equal(t, 42, score)
	assert.Equal(t, 0, gen.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Score_CacheOutlivesProfileEdits(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	cache, _ := newTestCache(t)
	gen := &fakeGenerator{response: `{"score": 55}`}
	svc := NewService(db, cache, gen, logger.NewNop())

	expectJobAndCandidate(mock)

	first, err := svc.Score(context.Background(), "job-001", "cand-001")
	assert.NoError(t, err)

	// A second call serves the cached value even though nothing guarantees
	// the underlying rows are unchanged.
	gen.response = `{"score": 10}`
	second, err := svc.Score(context.Background(), "job-001", "cand-001")
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, gen.calls)
}

func TestService_Score_StripsFences(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	cache, _ := newTestCache(t)
	gen := &fakeGenerator{response: "```json\n{\"score\": 73}\n```"}
	svc := NewService(db, cache, gen, logger.NewNop())

	expectJobAndCandidate(mock)

	score, err := svc.Score(context.Background(), "job-001", "cand-001")

	assert.NoError(t, err)
	assert.Equal(t, 73, score)
}

func TestService_Score_ClampsRange(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	cache, _ := newTestCache(t)
	gen := &fakeGenerator{response: `{"score": 140}`}
	svc := NewService(db, cache, gen, logger.NewNop())

	expectJobAndCandidate(mock)

	score, err := svc.Score(context.Background(), "job-001", "cand-001")

	assert.NoError(t, err)
	assert.Equal(t, 100, score)
}

func TestService_Score_ModelGarbage(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	cache, mr := newTestCache(t)
	gen := &fakeGenerator{response: "the candidate looks great"}
	svc := NewService(db, cache, gen, logger.NewNop())

	expectJobAndCandidate(mock)

	_, err = svc.Score(context.Background(), "job-001", "cand-001")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrScoreUnavailable))
	assert.False(t, mr.Exists("match_score:job-001:cand-001"))
}

func TestService_Score_JobMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	cache, _ := newTestCache(t)
	svc := NewService(db, cache, &fakeGenerator{}, logger.NewNop())

	mock.ExpectQuery(`SELECT title, job_description, skills_required FROM jobs`).
		WithArgs("job-missing").
		WillReturnRows(sqlmock.NewRows([]string{"title", "job_description", "skills_required"}))

	_, err = svc.Score(context.Background(), "job-missing", "cand-001")

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrJobNotFound))
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"plain", `{"score": 64}`, 64, false},
		{"fenced", "```json\n{\"score\": 64}\n```", 64, false},
		{"float truncates", `{"score": 64.9}`, 64, false},
		{"negative clamps", `{"score": -5}`, 0, false},
		{"over clamps", `{"score": 250}`, 100, false},
		{"prose", "looks good to me", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScore(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
