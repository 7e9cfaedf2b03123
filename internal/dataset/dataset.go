// Package dataset loads raw orders from the places a dashboard dataset can
// live: a local JSON file, an S3 object or the orders table in Postgres.
package dataset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/chrisdamba/orderpulse/internal/cloudwriter"
	"github.com/chrisdamba/orderpulse/internal/models"
	"github.com/chrisdamba/orderpulse/internal/repositories/postgres"
	"go.uber.org/zap"
)

type Source interface {
	Load(ctx context.Context) ([]models.RawOrder, error)
}

// Decode reads either a JSON array of orders or newline delimited orders.
func Decode(r io.Reader) ([]models.RawOrder, error) {
	br := bufio.NewReader(r)
	first, err := firstByte(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []models.RawOrder{}, nil
		}
		return nil, err
	}

	dec := json.NewDecoder(br)
	var orders []models.RawOrder
	if first == '[' {
		if err := dec.Decode(&orders); err != nil {
			return nil, fmt.Errorf("decode orders: %w", err)
		}
	} else {
		for {
			var o models.RawOrder
			if err := dec.Decode(&o); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return nil, fmt.Errorf("decode order #%d: %w", len(orders), err)
			}
			orders = append(orders, o)
		}
	}
	if orders == nil {
		orders = []models.RawOrder{}
	}

	for i, o := range orders {
		if o.State != models.OrderStateComplete && o.State != models.OrderStateCanceled {
			return nil, fmt.Errorf("order #%d (%s): %w %q", i, o.OrderNumber, models.ErrUnknownState, o.State)
		}
	}
	return orders, nil
}

func firstByte(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if !bytes.ContainsRune([]byte(" \t\r\n"), rune(b)) {
			return b, br.UnreadByte()
		}
	}
}

type FileSource struct {
	Path string
}

func (s *FileSource) Load(ctx context.Context) ([]models.RawOrder, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open orders file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

type S3Source struct {
	Opener cloudwriter.ObjectOpener
	Bucket string
	Key    string
}

func (s *S3Source) Load(ctx context.Context) ([]models.RawOrder, error) {
	rc, err := s.Opener.Open(ctx, s.Bucket, s.Key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return Decode(rc)
}

type orderLister interface {
	GetAll(ctx context.Context) ([]models.RawOrder, error)
}

type PostgresSource struct {
	Repo orderLister
}

func (s *PostgresSource) Load(ctx context.Context) ([]models.RawOrder, error) {
	orders, err := s.Repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load orders from postgres: %w", err)
	}
	if orders == nil {
		orders = []models.RawOrder{}
	}
	return orders, nil
}

// Open resolves cfg.OrdersSource. Recognised forms are a file path,
// file://path, s3://bucket/key and postgres (using cfg.Database). The
// returned func releases any connection the source holds.
func Open(ctx context.Context, cfg *models.Config, log *zap.Logger) (Source, func(), error) {
	raw := strings.TrimSpace(cfg.OrdersSource)
	if raw == "" {
		return nil, nil, fmt.Errorf("%w: empty", models.ErrUnknownSource)
	}
	noop := func() {}

	if raw == "postgres" {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		log.Info("loading orders from postgres", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))
		return &PostgresSource{Repo: postgres.NewOrderRepository(pool)}, pool.Close, nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// plain paths, including windows drive letters
		log.Info("loading orders from file", zap.String("path", raw))
		return &FileSource{Path: raw}, noop, nil
	}

	switch u.Scheme {
	case "file":
		path := u.Path
		if u.Host != "" {
			path = u.Host + u.Path
		}
		log.Info("loading orders from file", zap.String("path", path))
		return &FileSource{Path: path}, noop, nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, nil, fmt.Errorf("%w: s3 source needs bucket and key: %q", models.ErrUnknownSource, raw)
		}
		factory, err := cloudwriter.NewS3WriterFactory(ctx, cfg.CloudStorage.Region)
		if err != nil {
			return nil, nil, err
		}
		log.Info("loading orders from s3", zap.String("bucket", u.Host), zap.String("key", key))
		return &S3Source{Opener: factory, Bucket: u.Host, Key: key}, noop, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", models.ErrUnknownSource, raw)
	}
}
