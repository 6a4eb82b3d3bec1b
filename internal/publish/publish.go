// Package publish uploads the compiled site to an S3-compatible bucket and
// notifies the CDN afterwards.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/RobinCoderZhao/pdfsite/internal/siteconfig"
	"github.com/RobinCoderZhao/pdfsite/pkg/notify"
	"github.com/RobinCoderZhao/pdfsite/pkg/retry"
)

var (
	ErrNoBucket      = errors.New("publish: no bucket configured")
	ErrNoCredentials = errors.New("publish: no access key configured")
)

// ObjectPutter is the subset of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds a client from static credentials. Endpoint selects an
// S3-compatible store and switches to path-style addressing.
func NewS3Client(cfg siteconfig.PublishConfig) (*s3.Client, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, ErrNoCredentials
	}
	creds := aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{
			AccessKeyID:     cfg.AccessKey,
			SecretAccessKey: cfg.SecretKey,
			Source:          "pdfsite",
		}, nil
	})

	return s3.New(s3.Options{
		Region:      cfg.Region,
		Credentials: aws.NewCredentialsCache(creds),
	}, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Options configures a publish run.
type Options struct {
	DistDir     string
	Bucket      string
	Prefix      string
	DryRun      bool
	Concurrency int
	Retry       retry.Policy
}

// Object is one planned or completed upload.
type Object struct {
	Key          string `json:"key"`
	File         string `json:"file"`
	ContentType  string `json:"content_type"`
	CacheControl string `json:"cache_control"`
	Size         int64  `json:"size"`
}

// Result summarises a publish run.
type Result struct {
	Objects []Object `json:"objects"`
	Bytes   int64    `json:"bytes"`
	DryRun  bool     `json:"dry_run"`
}

// Publisher uploads dist and fires the purge notification.
type Publisher struct {
	client   ObjectPutter
	notifier *notify.Dispatcher
	logger   *slog.Logger
}

// NewPublisher creates a publisher. client may be nil for dry runs and
// notifier may be nil when no purge hook is configured.
func NewPublisher(client ObjectPutter, notifier *notify.Dispatcher) *Publisher {
	return &Publisher{client: client, notifier: notifier, logger: slog.Default()}
}

// Plan walks dist and returns the objects to upload, sorted by key.
func Plan(opts Options) ([]Object, error) {
	var objects []Object
	err := filepath.WalkDir(opts.DistDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != opts.DistDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(opts.DistDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		objects = append(objects, Object{
			Key:          objectKey(opts.Prefix, rel),
			File:         p,
			ContentType:  ContentType(rel),
			CacheControl: CacheControl(rel),
			Size:         info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", opts.DistDir, err)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// Run uploads every planned object, then sends the purge notification with
// the published HTML paths.
func (p *Publisher) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Bucket == "" && !opts.DryRun {
		return nil, ErrNoBucket
	}
	objects, err := Plan(opts)
	if err != nil {
		return nil, err
	}

	res := &Result{Objects: objects, DryRun: opts.DryRun}
	for _, o := range objects {
		res.Bytes += o.Size
	}
	if opts.DryRun {
		return res, nil
	}
	if p.client == nil {
		return nil, errors.New("publish: no storage client")
	}

	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultPolicy()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	var mu sync.Mutex
	uploaded := 0
	for _, o := range objects {
		o := o
		g.Go(func() error {
			if err := p.upload(gctx, opts, o); err != nil {
				return err
			}
			mu.Lock()
			uploaded++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, fmt.Errorf("publish: %d/%d uploaded: %w", uploaded, len(objects), err)
	}
	p.logger.Info("publish finished", "bucket", opts.Bucket, "objects", len(objects), "bytes", res.Bytes)

	if p.notifier != nil && p.notifier.Len() > 0 {
		msg := notify.Message{
			Event: "publish",
			Title: fmt.Sprintf("published %d objects to %s", len(objects), opts.Bucket),
			Paths: purgePaths(objects, opts.Prefix),
		}
		if err := p.notifier.SendAll(ctx, msg); err != nil {
			return res, fmt.Errorf("purge hook: %w", err)
		}
	}
	return res, nil
}

func (p *Publisher) upload(ctx context.Context, opts Options, o Object) error {
	body, err := os.ReadFile(o.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", o.File, err)
	}
	return retry.Do(ctx, opts.Retry, "put "+o.Key, func(ctx context.Context) error {
		_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:       aws.String(opts.Bucket),
			Key:          aws.String(o.Key),
			Body:         bytes.NewReader(body),
			ContentType:  aws.String(o.ContentType),
			CacheControl: aws.String(o.CacheControl),
		})
		if err != nil {
			return fmt.Errorf("s3 upload failed: %w", err)
		}
		p.logger.Debug("uploaded", "key", o.Key, "size", o.Size)
		return nil
	})
}

func objectKey(prefix, rel string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return rel
	}
	return prefix + "/" + rel
}

// purgePaths lists the URL paths of HTML objects, the only files whose
// content changes without a new name.
func purgePaths(objects []Object, prefix string) []string {
	var out []string
	for _, o := range objects {
		if path.Ext(o.Key) != ".html" {
			continue
		}
		out = append(out, "/"+strings.TrimPrefix(strings.TrimPrefix(o.Key, strings.Trim(prefix, "/")), "/"))
	}
	return out
}

// ContentType picks the Content-Type for a dist file.
func ContentType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	switch ext {
	case ".wasm":
		return "application/wasm"
	case ".mjs", ".js":
		return "text/javascript; charset=utf-8"
	case ".map", ".json":
		return "application/json"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// CacheControl keeps HTML revalidated and lets fingerprinted assets live
// forever.
func CacheControl(name string) string {
	switch {
	case strings.HasSuffix(name, ".html"):
		return "no-cache"
	case strings.HasPrefix(name, "assets/"):
		return "public, max-age=31536000, immutable"
	default:
		return "public, max-age=3600"
	}
}
