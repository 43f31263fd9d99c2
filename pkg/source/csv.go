package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
)

// CSVSource reads a delimited text file from an HTTP(S) URL or a local path
type CSVSource struct {
	location string
	encoding string
	client   *http.Client
	logger   *zap.Logger
}

// NewCSVSource creates a CSV source. encoding is a WHATWG label such as
// "windows-1252", "cp1252" or "utf-8"; an empty label means UTF-8.
func NewCSVSource(location, encoding string, logger *zap.Logger) *CSVSource {
	return &CSVSource{
		location: location,
		encoding: encoding,
		client:   http.DefaultClient,
		logger:   logger.Named("csv-source"),
	}
}

// WithHTTPClient replaces the HTTP client used for remote locations
func (s *CSVSource) WithHTTPClient(client *http.Client) *CSVSource {
	s.client = client
	return s
}

// Name returns the location being read
func (s *CSVSource) Name() string {
	return s.location
}

// Fetch downloads or opens the file, decodes it and parses every record
func (s *CSVSource) Fetch(ctx context.Context) ([][]string, error) {
	body, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	decoded, err := s.decode(body)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV from %s: %w", s.location, err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}

	s.logger.Debug("Read CSV records",
		zap.String("location", s.location),
		zap.Int("records", len(records)))

	return normalizeRecords(records)
}

func (s *CSVSource) open(ctx context.Context) (io.ReadCloser, error) {
	if strings.HasPrefix(s.location, "http://") || strings.HasPrefix(s.location, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request for %s: %w", s.location, err)
		}

		s.logger.Info("Downloading dataset", zap.String("url", s.location))
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", s.location, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to download %s: unexpected status %s", s.location, resp.Status)
		}
		return resp.Body, nil
	}

	path := strings.TrimPrefix(s.location, "file://")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

func (s *CSVSource) decode(r io.Reader) (io.Reader, error) {
	if s.encoding == "" {
		return r, nil
	}
	enc, err := htmlindex.Get(s.encoding)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", s.encoding, err)
	}
	return enc.NewDecoder().Reader(r), nil
}
