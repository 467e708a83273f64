package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"orgdiag/internal/project"
	"orgdiag/internal/util/jsonutil"
)

var ErrNotFound = errors.New("report: not found")

// Object names written per synthesis run.
const (
	ObjectJSON     = "report.json"
	ObjectMarkdown = "report.md"
)

// Store keeps archived report files per workspace.
type Store interface {
	Put(ctx context.Context, workspaceID, name string, content []byte, contentType string) error
	Get(ctx context.Context, workspaceID, name string) ([]byte, error)
	List(ctx context.Context, workspaceID string) ([]string, error)
}

// Archived is the JSON document stored for each report.
type Archived struct {
	ProblemStatement string         `json:"problemStatement"`
	Report           project.Report `json:"report"`
}

// Save writes the report as JSON and as Markdown.
func Save(ctx context.Context, store Store, workspaceID, problem string, rep project.Report) error {
	if store == nil {
		return nil
	}
	raw, err := jsonutil.MarshalNoEscapeIndent(Archived{ProblemStatement: problem, Report: rep}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := store.Put(ctx, workspaceID, ObjectJSON, raw, "application/json"); err != nil {
		return fmt.Errorf("archive %s: %w", ObjectJSON, err)
	}
	md := []byte(Markdown(problem, rep))
	if err := store.Put(ctx, workspaceID, ObjectMarkdown, md, "text/markdown; charset=utf-8"); err != nil {
		return fmt.Errorf("archive %s: %w", ObjectMarkdown, err)
	}
	return nil
}

// Load reads back the last report archived for a workspace. A nil store
// has nothing archived.
func Load(ctx context.Context, store Store, workspaceID string) (Archived, error) {
	if store == nil {
		return Archived{}, ErrNotFound
	}
	raw, err := store.Get(ctx, workspaceID, ObjectJSON)
	if err != nil {
		return Archived{}, err
	}
	var doc Archived
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Archived{}, fmt.Errorf("decode archived report: %w", err)
	}
	return doc, nil
}

// ---------------------------------------------------------------------------
// S3 / MinIO
// ---------------------------------------------------------------------------

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type S3Store struct {
	client     *minio.Client
	bucketName string
	region     string
	initOnce   sync.Once
	initErr    error
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Store{client: client, bucketName: bucket, region: region}, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

func (s *S3Store) Put(ctx context.Context, workspaceID, name string, content []byte, contentType string) error {
	key, err := objectKey(workspaceID, name)
	if err != nil {
		return err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *S3Store) Get(ctx context.Context, workspaceID, name string) ([]byte, error) {
	key, err := objectKey(workspaceID, name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}
	obj, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		code := minio.ToErrorResponse(err).Code
		if code == "NoSuchKey" || code == "NoSuchBucket" {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *S3Store) List(ctx context.Context, workspaceID string) ([]string, error) {
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return nil, fmt.Errorf("workspace_id is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}
	prefix := workspaceID + "/"
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if obj.Key != "" {
			names = append(names, strings.TrimPrefix(obj.Key, prefix))
		}
	}
	sort.Strings(names)
	return names, nil
}

// ---------------------------------------------------------------------------
// in-memory
// ---------------------------------------------------------------------------

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, workspaceID, name string, content []byte, _ string) error {
	key, err := objectKey(workspaceID, name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), content...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, workspaceID, name string) ([]byte, error) {
	key, err := objectKey(workspaceID, name)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (s *MemoryStore) List(_ context.Context, workspaceID string) ([]string, error) {
	prefix := strings.TrimSpace(workspaceID) + "/"
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			out = append(out, strings.TrimPrefix(key, prefix))
		}
	}
	sort.Strings(out)
	return out, nil
}

func objectKey(workspaceID, name string) (string, error) {
	workspaceID = strings.TrimSpace(workspaceID)
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if workspaceID == "" {
		return "", fmt.Errorf("workspace_id is required")
	}
	if name == "" {
		return "", fmt.Errorf("object name is required")
	}
	return workspaceID + "/" + name, nil
}
