package service

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"

	"record-ingest-backend/config"
	"record-ingest-backend/internal/filestate"
	"record-ingest-backend/internal/metrics"
	"record-ingest-backend/internal/model"
	"record-ingest-backend/internal/parser"
)

var ErrRunInProgress = errors.New("ingestion run already in progress")

type IngestService interface {
	ProcessFile(ctx context.Context) error
}

type ingestService struct {
	cfg         *config.IngestConfig
	parser      parser.RecordParser
	records     RecordService
	outcomes    OutcomeService
	stateMgr    filestate.Manager
	processLock sync.Mutex
}

func NewIngestService(
	cfg *config.Config,
	stateMgr filestate.Manager,
	parser parser.RecordParser,
	records RecordService,
	outcomes OutcomeService,
) IngestService {
	return &ingestService{
		cfg:      &cfg.Ingest,
		stateMgr: stateMgr,
		parser:   parser,
		records:  records,
		outcomes: outcomes,
	}
}

// ProcessFile reads the ingestion file, parses every line on its own and
// submits all parsed records as one batch. A run that starts while another is
// still going returns ErrRunInProgress without touching the file.
func (s *ingestService) ProcessFile(ctx context.Context) error {
	if !s.processLock.TryLock() {
		log.Warn().Str("file", s.cfg.FilePath).Msg("Ingestion already in progress, skipping run.")
		metrics.IngestRuns.WithLabelValues("skipped").Inc()
		return ErrRunInProgress
	}
	defer s.processLock.Unlock()

	filePath := s.cfg.FilePath
	log.Info().Str("file", filePath).Msg("----- Processing Data File -----")
	startTime := time.Now()

	trackOffsets := s.cfg.TrackOffsets && !isGzip(filePath)
	var offsets filestate.Offsets
	var startOffset int64
	if trackOffsets {
		loaded, err := s.stateMgr.Load()
		if err != nil {
			log.Error().Err(err).Str("state_file", s.stateMgr.Path()).Msg("Failed to load file state, reading from start")
			loaded = make(filestate.Offsets)
		}
		offsets = loaded
		startOffset = offsets[filePath]
	}

	result, readErr := s.readRecords(ctx, filePath, startOffset)
	if readErr != nil {
		log.Error().Err(readErr).Str("file", filePath).Msg("Failed to read data file")
	}

	if len(result.records) > 0 {
		if err := s.records.InsertMany(ctx, result.records); err != nil {
			metrics.IngestRuns.WithLabelValues("failed").Inc()
			return fmt.Errorf("insert ingested records: %w", err)
		}
	}

	if trackOffsets && result.offset != startOffset {
		offsets[filePath] = result.offset
		if err := s.stateMgr.Save(offsets); err != nil {
			log.Error().Err(err).Msg("Failed to save file state")
		}
	}

	log.Info().
		Str("file", filePath).
		Int64("lines_read", result.linesRead).
		Int("records_parsed", len(result.records)).
		Int("parse_errors", result.parseErrors).
		Dur("duration", time.Since(startTime)).
		Msg("Finished data file processing.")

	if readErr != nil {
		metrics.IngestRuns.WithLabelValues("failed").Inc()
		return fmt.Errorf("read data file: %w", readErr)
	}
	metrics.IngestRuns.WithLabelValues("success").Inc()
	return nil
}

type readResult struct {
	records     []model.Record
	linesRead   int64
	parseErrors int
	offset      int64 // bytes consumed, including line terminators
}

func (s *ingestService) readRecords(ctx context.Context, filePath string, startOffset int64) (readResult, error) {
	result := readResult{offset: startOffset}

	file, err := os.Open(filePath)
	if err != nil {
		return result, err
	}
	defer file.Close()

	var reader io.Reader = file
	if isGzip(filePath) {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return result, fmt.Errorf("open gzip stream: %w", err)
		}
		defer gz.Close()
		reader = gz
	} else if startOffset > 0 {
		info, err := file.Stat()
		if err != nil {
			return result, err
		}
		if info.Size() < startOffset {
			log.Warn().Str("file", filePath).Int64("last_offset", startOffset).Int64("current_size", info.Size()).Msg("File truncated or replaced? Resetting offset.")
			startOffset = 0
			result.offset = 0
		}
		if _, err := file.Seek(startOffset, io.SeekStart); err != nil {
			return result, fmt.Errorf("seek to offset %d: %w", startOffset, err)
		}
	}

	// Lines have no length cap; the offset counts every byte read,
	// terminators included.
	br := bufio.NewReader(reader)
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		raw, err := br.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return result, err
		}
		if len(raw) == 0 {
			return result, nil
		}
		result.linesRead++
		result.offset += int64(len(raw))

		line := bytes.TrimSuffix(bytes.TrimSuffix(raw, []byte("\n")), []byte("\r"))
		record, parseErr := s.parser.Parse(line)
		if parseErr != nil {
			result.parseErrors++
			metrics.IngestLines.WithLabelValues("invalid").Inc()
			s.outcomes.Record(ctx, model.NewErrorEntry("Error parsing JSON: "+parseErr.Error()))
		} else {
			metrics.IngestLines.WithLabelValues("parsed").Inc()
			result.records = append(result.records, record)
		}

		if err == io.EOF {
			return result, nil
		}
	}
}

func isGzip(filePath string) bool {
	return strings.HasSuffix(strings.ToLower(filePath), ".gz")
}
