package service

import (
	"context"

	"DriveX/internal/cli/api"
	"DriveX/internal/cli/session"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Profile — данные окна профиля.
type Profile struct {
	User         session.User
	StorageUsed  int64
	StorageLimit int64
	FileCount    int64
}

func (p Profile) UsedHuman() string  { return humanize.IBytes(uint64(max(p.StorageUsed, 0))) }
func (p Profile) LimitHuman() string { return humanize.IBytes(uint64(max(p.StorageLimit, 0))) }

// UsedPercent ограничен сверху 100.
func (p Profile) UsedPercent() float64 {
	if p.StorageLimit <= 0 {
		return 0
	}
	return min(float64(p.StorageUsed)/float64(p.StorageLimit)*100, 100)
}

type ProfileService struct {
	api     ProfileAPI
	session *session.Store
	limit   int64
	logger  *zap.SugaredLogger
}

// ProfileAPI объединяет вызовы, нужные профилю.
type ProfileAPI interface {
	FileAPI
	Me(ctx context.Context, token string) (*api.Envelope[api.User], error)
}

func NewProfileService(a ProfileAPI, s *session.Store, limitBytes int64, logger *zap.SugaredLogger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &ProfileService{api: a, session: s, limit: limitBytes, logger: logger}
}

// Load сначала запрашивает /auth/me, затем параллельно объём и число файлов.
// Свежий профиль сохраняется в сессию.
func (s *ProfileService) Load(ctx context.Context, token string) (*Profile, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	me, err := call(s.api.Me(ctx, token))
	if err != nil {
		return nil, err
	}
	p := &Profile{User: *session.FromAPI(me.Data), StorageLimit: s.limit}
	if s.session != nil {
		if err := s.session.SetUser(&p.User); err != nil {
			s.logger.Warnw("cache profile failed", "error", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		env, err := call(s.api.StorageUsage(gctx, token))
		if err != nil {
			return err
		}
		p.StorageUsed = env.Data.StorageUsed
		return nil
	})
	g.Go(func() error {
		env, err := call(s.api.ListFiles(gctx, token, api.ListQuery{Page: 0, Size: 1}))
		if err != nil {
			return err
		}
		p.FileCount = env.Data.Total
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return p, nil
}
