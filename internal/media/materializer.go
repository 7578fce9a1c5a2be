package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	uploadsPath    = "/wp-content/uploads/"
	sniffLen       = 512
	defaultTimeout = 30 * time.Second
	fallbackName   = "file"
)

var (
	schemePattern   = regexp.MustCompile(`^https?://`)
	unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9\-_.]`)
	underscoreRuns  = regexp.MustCompile(`_+`)
)

// Store persists stored files and the media entities that point at them.
type Store interface {
	SaveFile(file *models.File) error
	CreateMedia(media *models.MediaAsset) error
}

// Recorder observes download outcomes ("ok" or "error").
type Recorder interface {
	ObserveDownload(outcome string, size int64, elapsed time.Duration)
}

// Options configures a [Materializer].
type Options struct {
	BaseURL   string
	Client    *http.Client
	Limiter   *rate.Limiter
	Storage   *Storage
	Store     Store
	Logger    *log.Logger
	Recorder  Recorder
	UserAgent string
	Timeout   time.Duration
}

// Materializer downloads legacy attachments and creates media entities for them.
type Materializer struct {
	baseURL   string
	client    *http.Client
	limiter   *rate.Limiter
	storage   *Storage
	store     Store
	logger    *log.Logger
	recorder  Recorder
	userAgent string
	timeout   time.Duration
}

// NewMaterializer creates a [Materializer]. Storage and Store are required.
func NewMaterializer(opts Options) *Materializer {
	m := &Materializer{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		client:    opts.Client,
		limiter:   opts.Limiter,
		storage:   opts.Storage,
		store:     opts.Store,
		logger:    opts.Logger,
		recorder:  opts.Recorder,
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
	}
	if m.client == nil {
		m.client = http.DefaultClient
	}
	if m.limiter == nil {
		m.limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if m.logger == nil {
		m.logger = shared.NewLogger(nil)
	}
	if m.timeout <= 0 {
		m.timeout = defaultTimeout
	}
	m.logger = shared.WithLogger(m.logger, "component", "media")
	return m
}

// Process resolves, downloads and stores an attachment, then creates its media entity.
//
// Any failure is logged and returned; no partial media entity is created.
func (m *Materializer) Process(ctx context.Context, att models.LegacyAttachment) (*models.MediaAsset, error) {
	src, err := m.ResolveURL(att)
	if err != nil {
		m.logger.Warn("no file URL found", "wordpress_id", att.ID)
		return nil, err
	}

	name := FileName(att, src)
	file, err := m.download(ctx, src, name)
	if err != nil {
		m.logger.Error("failed to download file", "wordpress_id", att.ID, "url", src, "error", err)
		return nil, err
	}

	asset := &models.MediaAsset{
		Bundle:      Bundle(file.MimeType),
		Name:        att.Title,
		FileID:      file.ID,
		Alt:         att.AltText(),
		Description: strings.TrimSpace(att.Content),
	}
	if asset.Name == "" {
		asset.Name = file.Filename
	}
	if created, ok := models.ParseLegacyTime(att.Date); ok {
		asset.Created = created
	}

	if err := m.store.CreateMedia(asset); err != nil {
		m.logger.Error("failed to create media", "wordpress_id", att.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", shared.ErrStore, err)
	}

	m.logger.Info("processed media", "wordpress_id", att.ID, "media_id", asset.ID, "bundle", asset.Bundle, "file", file.URI)
	return asset, nil
}

// ResolveURL finds the remote URL of an attachment.
//
// The attached-file meta wins: used as is when absolute, otherwise joined under wp-content/uploads of the
// configured base URL or, without one, of the guid's origin. A guid that is itself an absolute file URL is
// the last resort.
func (m *Materializer) ResolveURL(att models.LegacyAttachment) (string, error) {
	if file := strings.TrimSpace(att.AttachedFile()); file != "" {
		if schemePattern.MatchString(file) {
			return file, nil
		}

		file = strings.TrimLeft(file, "/")
		if m.baseURL != "" {
			return m.baseURL + uploadsPath + file, nil
		}
		if origin, ok := guidOrigin(att.GUID); ok {
			return origin + uploadsPath + file, nil
		}
	}

	if guid, ok := usableGUID(att.GUID); ok {
		return guid, nil
	}

	return "", fmt.Errorf("%w: attachment %d", shared.ErrNoMediaURL, att.ID)
}

// usableGUID accepts absolute http(s) URLs that name a path, rejecting "?p=N" style permalinks.
func usableGUID(guid string) (string, bool) {
	guid = strings.TrimSpace(guid)
	if !schemePattern.MatchString(guid) {
		return "", false
	}

	u, err := url.Parse(guid)
	if err != nil || u.Host == "" || u.Path == "" || u.Path == "/" {
		return "", false
	}
	return guid, true
}

func guidOrigin(guid string) (string, bool) {
	if _, ok := usableGUID(guid); !ok {
		return "", false
	}

	u, _ := url.Parse(strings.TrimSpace(guid))
	return u.Scheme + "://" + u.Host, true
}

// FileName names the stored file: the sanitized title plus the URL's extension, or the URL's base name.
func FileName(att models.LegacyAttachment, src string) string {
	urlPath := src
	if u, err := url.Parse(src); err == nil {
		urlPath = u.Path
	}

	base := path.Base(urlPath)
	if unescaped, err := url.PathUnescape(base); err == nil {
		base = unescaped
	}
	ext := path.Ext(base)

	var name string
	if title := strings.TrimSpace(att.Title); title != "" {
		name = SanitizeFilename(title)
		if name != "" && ext != "" && !strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
			name += ext
		}
	}
	if name == "" {
		name = SanitizeFilename(base)
	}
	if name == "" || name == "." || name == ".." {
		name = fallbackName + ext
	}
	return name
}

// SanitizeFilename replaces characters outside [A-Za-z0-9-_.] with underscores, collapses underscore runs and
// trims underscores from both ends.
func SanitizeFilename(name string) string {
	name = unsafeFileChars.ReplaceAllString(name, "_")
	name = underscoreRuns.ReplaceAllString(name, "_")
	return strings.Trim(name, "_")
}

// Bundle maps a MIME type to a media bundle.
func Bundle(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "application/pdf" {
		return "document"
	}

	major, _, _ := strings.Cut(mimeType, "/")
	switch major {
	case "image", "video", "audio":
		return major
	default:
		return "file"
	}
}

// DetectMime returns the MIME type of a stored file from its extension, falling back to content sniffing.
func DetectMime(name string, head []byte) string {
	if byExt := mime.TypeByExtension(strings.ToLower(path.Ext(name))); byExt != "" {
		return stripParams(byExt)
	}
	return stripParams(http.DetectContentType(head))
}

func stripParams(mimeType string) string {
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		return parsed
	}
	return mimeType
}

func (m *Materializer) download(ctx context.Context, src, name string) (*models.File, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDownload, err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	file, err := m.fetch(ctx, src, name)
	if m.recorder != nil {
		outcome, size := "ok", int64(0)
		if err != nil {
			outcome = "error"
		} else {
			size = file.Size
		}
		m.recorder.ObserveDownload(outcome, size, time.Since(start))
	}
	return file, err
}

func (m *Materializer) fetch(ctx context.Context, src, name string) (*models.File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDownload, err)
	}
	if m.userAgent != "" {
		req.Header.Set("User-Agent", m.userAgent)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", shared.ErrDownload, src, resp.Status)
	}

	head := &headBuffer{limit: sniffLen}
	size, err := m.storage.Write(name, io.TeeReader(resp.Body, head))
	if err != nil {
		return nil, err
	}

	file := &models.File{
		URI:      m.storage.URI(name),
		Filename: name,
		MimeType: DetectMime(name, head.Bytes()),
		Size:     size,
	}
	if err := m.store.SaveFile(file); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}

	m.logger.Debug("downloaded file", "file", name, "bytes", size, "mime", file.MimeType)
	return file, nil
}

// headBuffer keeps the first limit bytes written to it.
type headBuffer struct {
	bytes.Buffer
	limit int
}

func (h *headBuffer) Write(p []byte) (int, error) {
	if room := h.limit - h.Len(); room > 0 {
		h.Buffer.Write(p[:min(room, len(p))])
	}
	return len(p), nil
}
