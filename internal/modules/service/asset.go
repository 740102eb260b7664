package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	stdpath "path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/assetbucket/internal/config"
	"github.com/memodb-io/assetbucket/internal/infra/blob"
	"github.com/memodb-io/assetbucket/internal/infra/scanner"
	"github.com/memodb-io/assetbucket/internal/modules/model"
	"github.com/memodb-io/assetbucket/internal/modules/repo"
	"github.com/memodb-io/assetbucket/internal/pkg/media"
	"github.com/memodb-io/assetbucket/internal/pkg/utils/mime"
	"github.com/memodb-io/assetbucket/internal/pkg/utils/path"
	"github.com/memodb-io/assetbucket/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	EventAssetCreated = "asset.created"
	EventAssetDeleted = "asset.deleted"
)

// EventPublisher receives asset lifecycle events. *mq.Publisher satisfies it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, body any) error
}

type AssetEvent struct {
	Event      string    `json:"event"`
	UID        string    `json:"uid"`
	Name       string    `json:"name"`
	ModelType  string    `json:"model_type"`
	Folder     string    `json:"folder"`
	OccurredAt time.Time `json:"occurred_at"`
}

type UploadInput struct {
	Content      io.Reader
	OriginalName string
	// Folder is the raw client value; it is normalized here.
	Folder string
}

// Locator addresses an asset by uid or by base name; exactly one is set.
type Locator struct {
	UID  string
	Name string
}

func ByUID(uid string) Locator   { return Locator{UID: uid} }
func ByName(name string) Locator { return Locator{Name: name} }

// ServedFile is a stored file opened for streaming. Callers must close Body.
type ServedFile struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

type AssetService interface {
	Upload(ctx context.Context, in UploadInput) (*model.Asset, error)
	GetByName(ctx context.Context, name string) (*model.Asset, error)
	Delete(ctx context.Context, loc Locator) (*model.Asset, error)
	// OpenFile resolves a path below the serving prefix, e.g.
	// "images/small/products/abc.png" or "pdf/reports/abc.pdf".
	OpenFile(ctx context.Context, filePath string) (*ServedFile, error)
	// OriginalPath is the public path of the asset's primary file.
	OriginalPath(a *model.Asset) string
}

type assetService struct {
	r      repo.AssetRepo
	store  blob.Storage
	scan   scanner.Scanner
	pool   *media.Pool
	layout media.StorageConfig
	pub    EventPublisher
	log    *zap.Logger
	cfg    *config.Config
	now    func() time.Time
}

// NewAssetService wires the ingestion pipeline. pub may be nil.
func NewAssetService(
	r repo.AssetRepo,
	store blob.Storage,
	scan scanner.Scanner,
	pool *media.Pool,
	layout media.StorageConfig,
	pub EventPublisher,
	log *zap.Logger,
	cfg *config.Config,
) AssetService {
	return &assetService{
		r:      r,
		store:  store,
		scan:   scan,
		pool:   pool,
		layout: layout,
		pub:    pub,
		log:    log,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func (s *assetService) tracer() trace.Tracer { return otel.Tracer(s.cfg.App.Name) }

// Upload runs one upload through sniffing, classification, scanning, variant
// generation and storage, then records it. Nothing is recorded for a rejected
// upload and every file written by the attempt is removed again.
func (s *assetService) Upload(ctx context.Context, in UploadInput) (*model.Asset, error) {
	start := time.Now()
	ctx, span := s.tracer().Start(ctx, "asset.upload")
	defer span.End()

	category := "unknown"
	a, err := s.upload(ctx, in, &category)
	durationMs := float64(time.Since(start).Milliseconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		telemetry.RecordUpload(ctx, category, uploadStatus(err), durationMs)
		return nil, err
	}
	span.SetAttributes(attribute.String("asset.uid", a.UID), attribute.String("asset.category", category))
	telemetry.RecordUpload(ctx, category, "success", durationMs)

	s.publish(ctx, EventAssetCreated, a)
	return a, nil
}

func uploadStatus(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrUnsupportedType):
		return "unsupported_type"
	case errors.Is(err, ErrScanFailure):
		return "scan_failure"
	}
	return "error"
}

func (s *assetService) upload(ctx context.Context, in UploadInput, category *string) (*model.Asset, error) {
	if in.Content == nil {
		return nil, fmt.Errorf("%w: no file", ErrValidation)
	}
	folder, err := path.NormalizeFolder(in.Folder)
	if err != nil {
		return nil, fmt.Errorf("%w: folder: %v", ErrValidation, err)
	}

	tmp, size, err := s.spool(in.Content)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	head := make([]byte, mime.SniffLen)
	n, err := tmp.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	mimeType, ext := mime.Detect(head[:n])

	cat, err := media.Classify(mimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}
	*category = cat.String()
	if ext == "" {
		ext = cat.DefaultExtension()
	}

	if err := s.scanUpload(ctx, tmp); err != nil {
		return nil, err
	}

	// Fresh identifiers per attempt keep concurrent uploads on disjoint paths.
	uid := uuid.NewString()
	name := uuid.NewString()

	written := make([]string, 0, len(s.layout.Variants()))
	committed := false
	defer func() {
		if !committed {
			s.removeKeys(context.WithoutCancel(ctx), written)
		}
	}()

	build := BuildInput{
		UID:          uid,
		Name:         name,
		OriginalName: in.OriginalName,
		Category:     cat,
		Folder:       s.layout.Folder(cat, folder),
		MimeType:     mimeType,
		Extension:    ext,
		Disk:         s.store.Disk(),
		Size:         size,
	}

	if cat == media.CategoryImage {
		if err := s.storeImage(ctx, tmp, folder, &build, &written); err != nil {
			return nil, err
		}
	} else {
		loc := s.layout.Layout(media.LayoutInput{Category: cat, Folder: folder, BaseName: name, Extension: ext})
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind upload: %w", err)
		}
		written = append(written, loc.Key)
		if _, err := s.store.Put(ctx, loc.Key, tmp, mimeType); err != nil {
			return nil, fmt.Errorf("store %s: %w", loc.Key, err)
		}
	}

	build.Now = s.now()
	a := BuildAsset(build)
	if err := s.r.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create asset record: %w", err)
	}
	committed = true
	return a, nil
}

// spool copies the upload to a temp file so it can be sniffed, scanned and
// read again without holding it in memory.
func (s *assetService) spool(r io.Reader) (*os.File, int64, error) {
	tmp, err := os.CreateTemp(s.cfg.Storage.TempDir, "upload-*")
	if err != nil {
		return nil, 0, fmt.Errorf("create upload buffer: %w", err)
	}
	limit := s.cfg.App.MaxUploadMB << 20
	if limit <= 0 {
		limit = 64 << 20
	}
	size, err := io.Copy(tmp, io.LimitReader(r, limit+1))
	if err == nil && size > limit {
		err = fmt.Errorf("%w: file exceeds %d MB", ErrValidation, s.cfg.App.MaxUploadMB)
	}
	if err == nil && size == 0 {
		err = fmt.Errorf("%w: empty file", ErrValidation)
	}
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		if errors.Is(err, ErrValidation) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("buffer upload: %w", err)
	}
	return tmp, size, nil
}

// scanUpload fails closed: anything but a Safe verdict rejects the upload.
func (s *assetService) scanUpload(ctx context.Context, f *os.File) error {
	ctx, span := s.tracer().Start(ctx, "asset.scan")
	defer span.End()

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind upload: %w", err)
	}
	res, err := s.scan.Scan(ctx, f)
	span.SetAttributes(attribute.String("scan.verdict", res.Verdict.String()))
	if err != nil {
		s.log.Warn("scanner unavailable, rejecting upload", zap.Error(err))
		telemetry.RecordScanRejection(ctx, res.Verdict.String())
		return fmt.Errorf("%w: scanner unavailable", ErrScanFailure)
	}
	switch res.Verdict {
	case scanner.Safe:
		return nil
	case scanner.Unsafe:
		s.log.Warn("upload rejected by scanner", zap.String("signature", res.Signature))
		telemetry.RecordScanRejection(ctx, res.Verdict.String())
		return fmt.Errorf("%w: %s", ErrScanFailure, res.Signature)
	}
	telemetry.RecordScanRejection(ctx, res.Verdict.String())
	return fmt.Errorf("%w: scanner unavailable", ErrScanFailure)
}

func (s *assetService) storeImage(ctx context.Context, f *os.File, folder string, in *BuildInput, written *[]string) error {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind upload: %w", err)
	}
	src, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	genCtx, span := s.tracer().Start(ctx, "asset.variants")
	gen, err := media.Run(genCtx, s.pool, func() (*media.Generated, error) {
		return media.Generate(src, s.layout.Variants(), s.cfg.App.MaxImagePixels)
	})
	span.End()
	if err != nil {
		if errors.Is(err, media.ErrDecode) {
			return fmt.Errorf("%w: %v", ErrUnsupportedType, err)
		}
		return fmt.Errorf("generate variants: %w", err)
	}
	for variant, verr := range gen.Failures {
		s.log.Warn("image variant skipped",
			zap.String("name", in.Name),
			zap.String("variant", variant),
			zap.Error(verr))
		telemetry.RecordVariantError(ctx, variant)
	}

	in.Width, in.Height = gen.Width, gen.Height
	for _, r := range gen.Renditions {
		loc := s.layout.Layout(media.LayoutInput{
			Category:  media.CategoryImage,
			Folder:    folder,
			Variant:   r.Spec.Name,
			BaseName:  in.Name,
			Extension: r.Extension(in.Extension),
		})
		*written = append(*written, loc.Key)
		meta, err := s.store.Put(ctx, loc.Key, bytes.NewReader(r.Data), r.MimeType)
		if err != nil {
			return fmt.Errorf("store %s: %w", loc.Key, err)
		}
		in.Variants = append(in.Variants, StoredVariant{
			Spec:     r.Spec,
			Location: loc,
			Size:     meta.SizeB,
			Width:    r.Width,
			Height:   r.Height,
		})
	}
	return nil
}

func (s *assetService) GetByName(ctx context.Context, name string) (*model.Asset, error) {
	a, err := s.r.GetByName(ctx, name)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *assetService) resolve(ctx context.Context, loc Locator) (*model.Asset, error) {
	if loc.UID != "" {
		if _, err := uuid.Parse(loc.UID); err != nil {
			return nil, ErrNotFound
		}
		a, err := s.r.GetByUID(ctx, loc.UID)
		if err != nil {
			return nil, notFound(err)
		}
		return a, nil
	}
	if loc.Name == "" {
		return nil, ErrNotFound
	}
	return s.GetByName(ctx, loc.Name)
}

// Delete removes every file of the asset, then its record. Missing files are
// fine. If the record cannot be removed the files are already gone and
// ErrPartialDeletion is returned with the resolved asset.
func (s *assetService) Delete(ctx context.Context, loc Locator) (*model.Asset, error) {
	ctx, span := s.tracer().Start(ctx, "asset.delete")
	defer span.End()

	a, err := s.resolve(ctx, loc)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			telemetry.RecordDelete(ctx, "not_found")
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("asset.uid", a.UID))

	s.removeKeys(ctx, s.fileKeys(a))

	if err := s.r.Delete(ctx, a); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		s.log.Error("asset files removed but record remains",
			zap.String("uid", a.UID),
			zap.String("name", a.Name),
			zap.Error(err))
		telemetry.RecordDelete(ctx, "partial")
		return a, fmt.Errorf("%w: %v", ErrPartialDeletion, err)
	}

	telemetry.RecordDelete(ctx, "deleted")
	s.publish(ctx, EventAssetDeleted, a)
	return a, nil
}

// fileKeys lists every storage key the asset may own: the primary file, each
// recorded variant, and the variant layout recomputed from the record so a
// variant missing from responsive_images is still swept.
func (s *assetService) fileKeys(a *model.Asset) []string {
	seen := map[string]struct{}{}
	var keys []string
	add := func(k string) {
		if k == "" {
			return
		}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	add(a.PrimaryKey())
	cat, ok := media.ParseCategory(a.ModelType)
	if !ok {
		s.log.Warn("asset has unknown model type", zap.String("uid", a.UID), zap.String("model_type", a.ModelType))
	}
	if cat != media.CategoryImage {
		return keys
	}

	for _, entry := range a.ResponsiveImages.Data() {
		if k, ok := s.layout.KeyFromPublicPath(entry.Path); ok {
			add(k)
		}
	}
	folder := s.layout.SubFolder(media.CategoryImage, a.Folder)
	for _, spec := range s.layout.Variants() {
		for _, ext := range []string{a.Extension, spec.Extension(a.Extension), media.TranscodeExtension} {
			add(s.layout.Layout(media.LayoutInput{
				Category:  media.CategoryImage,
				Folder:    folder,
				Variant:   spec.Name,
				BaseName:  a.Name,
				Extension: ext,
			}).Key)
		}
	}
	return keys
}

func (s *assetService) removeKeys(ctx context.Context, keys []string) {
	for _, k := range keys {
		if err := s.store.Delete(ctx, k); err != nil {
			s.log.Warn("remove stored file", zap.String("key", k), zap.Error(err))
		}
	}
}

func (s *assetService) OpenFile(ctx context.Context, filePath string) (*ServedFile, error) {
	if err := path.ValidatePath(filePath); err != nil {
		return nil, ErrNotFound
	}
	var segs []string
	for _, seg := range strings.Split(filePath, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	if len(segs) < 2 {
		return nil, ErrNotFound
	}
	if _, ok := s.layout.CategoryForDir(segs[0]); !ok {
		return nil, ErrNotFound
	}
	if strings.HasPrefix(segs[len(segs)-1], ".") {
		return nil, ErrNotFound
	}

	var candidates []string
	if segs[0] == s.layout.Dir(media.CategoryImage) && len(segs) >= 3 {
		if spec, ok := s.layout.Variant(segs[1]); ok {
			candidates = s.variantCandidates(ctx, spec, segs[2:])
		}
	}
	candidates = append(candidates, strings.Join(segs, "/"))

	for _, key := range candidates {
		obj, err := s.store.Open(ctx, key)
		if errors.Is(err, blob.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", key, err)
		}
		return served(obj)
	}
	return nil, ErrNotFound
}

// variantCandidates resolves /images/{variant}/{folder...}/{file}. The record,
// when there is one, decides the folder and extension; otherwise the request
// path is taken as is.
func (s *assetService) variantCandidates(ctx context.Context, spec media.VariantSpec, rest []string) []string {
	file := rest[len(rest)-1]
	ext := strings.TrimPrefix(stdpath.Ext(file), ".")
	base := strings.TrimSuffix(file, stdpath.Ext(file))
	folder := strings.Join(rest[:len(rest)-1], "/")

	var keys []string
	if a, err := s.r.GetByName(ctx, base); err == nil && a.IsImage() {
		if entry, ok := a.ResponsiveImages.Data()[media.ResponsiveKey(media.CategoryImage, spec.Name)]; ok {
			if k, ok := s.layout.KeyFromPublicPath(entry.Path); ok {
				keys = append(keys, k)
			}
		}
		keys = append(keys, s.layout.Layout(media.LayoutInput{
			Category:  media.CategoryImage,
			Folder:    s.layout.SubFolder(media.CategoryImage, a.Folder),
			Variant:   spec.Name,
			BaseName:  a.Name,
			Extension: spec.Extension(a.Extension),
		}).Key)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Warn("lookup asset for file", zap.String("name", base), zap.Error(err))
	}

	for _, e := range []string{ext, spec.Extension(ext)} {
		keys = append(keys, s.layout.Layout(media.LayoutInput{
			Category:  media.CategoryImage,
			Folder:    folder,
			Variant:   spec.Name,
			BaseName:  base,
			Extension: e,
		}).Key)
	}
	return keys
}

func served(obj *blob.Object) (*ServedFile, error) {
	contentType, body, err := mime.Sniff(obj.Body)
	if err != nil {
		_ = obj.Body.Close()
		return nil, fmt.Errorf("sniff stored file: %w", err)
	}
	return &ServedFile{
		Body: struct {
			io.Reader
			io.Closer
		}{body, obj.Body},
		Size:        obj.SizeB,
		ContentType: contentType,
	}, nil
}

func (s *assetService) OriginalPath(a *model.Asset) string {
	return s.layout.PublicPath(a.PrimaryKey())
}

func (s *assetService) publish(ctx context.Context, event string, a *model.Asset) {
	if s.pub == nil {
		return
	}
	err := s.pub.PublishJSON(ctx, event, AssetEvent{
		Event:      event,
		UID:        a.UID,
		Name:       a.Name,
		ModelType:  a.ModelType,
		Folder:     a.Folder,
		OccurredAt: s.now(),
	})
	if err != nil {
		s.log.Warn("publish asset event", zap.String("event", event), zap.String("uid", a.UID), zap.Error(err))
	}
}
