package service

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"DriveX/internal/cli/api"
	"DriveX/internal/kind"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Key — составной ключ выборки: смена любого поля требует новой загрузки.
type Key struct {
	Token    string
	Category kind.Category
	Search   string
}

type flight struct {
	key     Key
	page    int
	gen     uint64
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
	done    bool
	list    *api.FileList
	err     error
}

// FileBrowser держит текущую страницу списка. Побеждает последний запрошенный
// ключ: новый ключ отменяет предыдущий запрос, а его результат отбрасывается.
type FileBrowser struct {
	api      FileAPI
	pageSize int
	logger   *zap.SugaredLogger
	sf       singleflight.Group

	mu       sync.Mutex
	gen      uint64
	inflight *flight
	// последний запрошенный ключ, даже если загрузка не удалась
	reqKey    Key
	reqPage   int
	requested bool
	// последний успешно загруженный ключ
	key       Key
	page      int
	list      *api.FileList
	hasResult bool
	err       error
}

func NewFileBrowser(a FileAPI, pageSize int, logger *zap.SugaredLogger) *FileBrowser {
	if pageSize <= 0 {
		pageSize = 20
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &FileBrowser{api: a, pageSize: pageSize, logger: logger}
}

// Fetch возвращает страницу для ключа. Для того же ключа и страницы отдаётся
// кэш, пока не вызван Refresh.
func (b *FileBrowser) Fetch(ctx context.Context, key Key, page int) (*api.FileList, error) {
	if page < 0 {
		page = 0
	}
	b.mu.Lock()
	if b.hasResult && b.err == nil && b.key == key && b.page == page {
		l := b.list
		b.reqKey, b.reqPage, b.requested = key, page, true
		b.mu.Unlock()
		return l, nil
	}
	b.mu.Unlock()
	return b.load(ctx, key, page, false)
}

// Refresh перезагружает последний запрошенный ключ и страницу,
// в том числе после неудачной загрузки.
func (b *FileBrowser) Refresh(ctx context.Context) (*api.FileList, error) {
	b.mu.Lock()
	key, page, ok := b.reqKey, b.reqPage, b.requested
	b.mu.Unlock()
	if !ok {
		return nil, errors.New("no file list requested")
	}
	return b.load(ctx, key, page, true)
}

func (b *FileBrowser) load(ctx context.Context, key Key, page int, force bool) (*api.FileList, error) {
	b.mu.Lock()
	fl := b.inflight
	if force || fl == nil || fl.done || fl.ctx.Err() != nil || fl.key != key || fl.page != page {
		if fl != nil {
			fl.cancel()
		}
		b.gen++
		// запрос общий для всех ожидающих: отмена одного из них его не обрывает
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		fl = &flight{key: key, page: page, gen: b.gen, ctx: fctx, cancel: cancel}
		b.inflight = fl
		b.reqKey, b.reqPage, b.requested = key, page, true
	}
	fl.waiters++
	b.mu.Unlock()

	ch := b.sf.DoChan(strconv.FormatUint(fl.gen, 10), func() (any, error) {
		b.mu.Lock()
		done, list, err := fl.done, fl.list, fl.err
		b.mu.Unlock()
		if done {
			// опоздавший участник: результат уже записан
			return list, err
		}
		env, err := call(b.api.ListFiles(fl.ctx, key.Token, api.ListQuery{
			Page:   page,
			Size:   b.pageSize,
			Type:   string(key.Category),
			Search: key.Search,
		}))
		if err != nil {
			return nil, err
		}
		return &env.Data, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		b.mu.Lock()
		fl.waiters--
		if fl.waiters == 0 && !fl.done {
			fl.cancel()
		}
		b.mu.Unlock()
		return nil, ctx.Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	fl.waiters--
	if fl.gen != b.gen {
		b.logger.Debugw("discarding stale file list", "gen", fl.gen, "current", b.gen)
		return nil, ErrStale
	}
	if !fl.done {
		fl.done = true
		fl.cancel()
		if res.Err != nil {
			fl.err = res.Err
		} else {
			fl.list = res.Val.(*api.FileList)
		}
		if fl.err != nil {
			b.err = fl.err
		} else {
			b.key, b.page, b.list, b.hasResult, b.err = key, page, fl.list, true, nil
		}
	}
	if fl.err != nil {
		return nil, fl.err
	}
	return fl.list, nil
}

// Delete удаляет файл с токеном последнего запрошенного ключа и при успехе
// перезагружает этот ключ. При ошибке список не меняется.
func (b *FileBrowser) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	token, ok := b.reqKey.Token, b.requested
	b.mu.Unlock()
	if !ok {
		return errors.New("no file list loaded")
	}
	if _, err := call(b.api.DeleteFile(ctx, token, id)); err != nil {
		return err
	}
	_, err := b.Refresh(ctx)
	return err
}

// Requested возвращает последний запрошенный ключ и страницу.
func (b *FileBrowser) Requested() (Key, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reqKey, b.reqPage
}

// Current возвращает последний успешно загруженный ключ, страницу и список.
func (b *FileBrowser) Current() (Key, int, *api.FileList) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.key, b.page, b.list
}

func (b *FileBrowser) Files() []api.FileItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.list == nil {
		return nil
	}
	return append([]api.FileItem(nil), b.list.Files...)
}

// Err возвращает ошибку последней загрузки текущего ключа.
func (b *FileBrowser) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *FileBrowser) PageSize() int { return b.pageSize }
