package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/photofeed/server/internal/models"
	"github.com/photofeed/server/internal/observability"
	"github.com/photofeed/server/internal/repository"
)

// DefaultDetailError is shown when a load fails without a message
const DefaultDetailError = "Failed to load photo details"

// detailLoadTimeout bounds a shared getInfo call once its callers are gone
const detailLoadTimeout = 30 * time.Second

// DetailKind tags the variant of a DetailState
type DetailKind int

const (
	DetailLoading DetailKind = iota
	DetailSuccess
	DetailError
)

func (k DetailKind) String() string {
	switch k {
	case DetailLoading:
		return "loading"
	case DetailSuccess:
		return "success"
	case DetailError:
		return "error"
	default:
		return "unknown"
	}
}

// DetailState is the state of the photo detail view
type DetailState struct {
	Kind    DetailKind
	Info    *models.PhotoInfo
	Message string
}

// MarshalJSON encodes {"status": ..., "photo"|"error": ...}
func (d DetailState) MarshalJSON() ([]byte, error) {
	out := struct {
		Status string            `json:"status"`
		Photo  *models.PhotoInfo `json:"photo,omitempty"`
		Error  string            `json:"error,omitempty"`
	}{Status: d.Kind.String()}

	switch d.Kind {
	case DetailSuccess:
		out.Photo = d.Info
	case DetailError:
		out.Error = d.Message
	}
	return json.Marshal(out)
}

// PhotoInfoSource fetches photo detail records
type PhotoInfoSource interface {
	GetPhotoInfo(ctx context.Context, photoID, secret string) (*models.PhotoInfo, error)
}

// PhotoDetailService loads photo details, remembering recent results
type PhotoDetailService struct {
	source PhotoInfoSource
	cache  repository.PhotoCacheRepo
	recent *lru.Cache[string, *models.PhotoInfo]
	group  singleflight.Group
	logger *observability.Logger
}

// NewPhotoDetailService creates the service. cache may be nil; size is the
// number of details kept in memory.
func NewPhotoDetailService(source PhotoInfoSource, cache repository.PhotoCacheRepo, size int, logger *observability.Logger) (*PhotoDetailService, error) {
	if size <= 0 {
		size = 256
	}
	recent, err := lru.New[string, *models.PhotoInfo](size)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observability.GetLogger()
	}
	return &PhotoDetailService{
		source: source,
		cache:  cache,
		recent: recent,
		logger: logger.Named("detail"),
	}, nil
}

// Load returns Success or Error for the photo. secret may be empty, in which
// case the one remembered in the photo cache is used when known.
func (s *PhotoDetailService) Load(ctx context.Context, photoID, secret string) DetailState {
	info, err := s.fetch(ctx, photoID, secret)
	if err != nil {
		return DetailState{Kind: DetailError, Message: detailMessage(err)}
	}
	return DetailState{Kind: DetailSuccess, Info: info}
}

// Watch reports Loading, then the result of Load
func (s *PhotoDetailService) Watch(ctx context.Context, photoID, secret string, onState func(DetailState)) {
	onState(DetailState{Kind: DetailLoading})
	onState(s.Load(ctx, photoID, secret))
}

func (s *PhotoDetailService) fetch(ctx context.Context, photoID, secret string) (*models.PhotoInfo, error) {
	if photoID == "" {
		return nil, models.ErrEmptyPhotoID
	}

	ctx, span := observability.StartServiceSpan(ctx, "PhotoDetailService", "Load")
	defer span.End()
	span.SetAttributes(observability.PhotoID(photoID))

	if secret == "" {
		secret = s.cachedSecret(ctx, photoID)
	}

	// the secret is Flickr's access check, so it is part of the key
	key := detailKey(photoID, secret)
	if info, ok := s.recent.Get(key); ok {
		observability.AddEvent(span, "cache_hit")
		observability.SetSuccess(span)
		return info, nil
	}

	// The shared load outlives any single caller; each caller still gives up
	// on its own context.
	loadCtx := context.WithoutCancel(ctx)
	results := s.group.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(loadCtx, detailLoadTimeout)
		defer cancel()

		info, err := s.source.GetPhotoInfo(callCtx, photoID, secret)
		if err != nil {
			return nil, err
		}
		if info == nil {
			return nil, models.ErrPhotoNotFound
		}
		s.recent.Add(key, info)
		return info, nil
	})

	var res singleflight.Result
	select {
	case res = <-results:
	case <-ctx.Done():
		observability.RecordError(span, ctx.Err())
		return nil, ctx.Err()
	}

	if res.Shared {
		observability.AddEvent(span, "shared_load")
	}
	if res.Err != nil {
		observability.RecordError(span, res.Err)
		s.logger.WithContext(ctx).WithField("photo_id", photoID).Warnf("load photo details: %v", res.Err)
		return nil, res.Err
	}

	observability.SetSuccess(span)
	return res.Val.(*models.PhotoInfo), nil
}

func detailKey(photoID, secret string) string {
	return photoID + "/" + secret
}

func (s *PhotoDetailService) cachedSecret(ctx context.Context, photoID string) string {
	if s.cache == nil {
		return ""
	}
	cached, err := s.cache.GetByID(ctx, photoID)
	if err != nil {
		s.logger.WithContext(ctx).Debugf("photo cache lookup %s: %v", photoID, err)
		return ""
	}
	if cached == nil {
		return ""
	}
	return cached.Secret
}

// Forget drops every remembered result for the photo
func (s *PhotoDetailService) Forget(photoID string) {
	prefix := photoID + "/"
	for _, key := range s.recent.Keys() {
		if strings.HasPrefix(key, prefix) {
			s.recent.Remove(key)
		}
	}
}

func detailMessage(err error) string {
	if err == nil || err.Error() == "" {
		return DefaultDetailError
	}
	return err.Error()
}
