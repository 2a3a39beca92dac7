package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/riv-viewer/riv/internal/export"
	"github.com/riv-viewer/riv/internal/logtail"
	"github.com/riv-viewer/riv/internal/rivapi"
	"github.com/riv-viewer/riv/internal/state"
	"github.com/riv-viewer/riv/internal/viewer"
)

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// uploadDoneMsg carries the outcome of a direct DICOM upload.
type uploadDoneMsg struct {
	ticket viewer.UploadTicket
	file   viewer.RawFile
	info   viewer.StudyInfo
	err    error
}

// e2eDoneMsg carries the outcome of an E2E upload with its scan type.
type e2eDoneMsg struct {
	upload viewer.E2EUpload
	info   viewer.StudyInfo
	err    error
}

// frameMsg carries one fetched and decoded frame.
type frameMsg struct {
	req   viewer.RenderRequest
	image *viewer.Image
	err   error
}

type probeMsg struct {
	message string
	elapsed time.Duration
	err     error
}

// exportDoneMsg reports a convert or extract archive saved to disk.
type exportDoneMsg struct {
	op     string
	result export.Result
	err    error
}

type activityMsg struct {
	lines []string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func uploadStudyCmd(ctx context.Context, client rivapi.Service, logger *slog.Logger, ticket viewer.UploadTicket, file viewer.RawFile) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		resp, err := uploadFile(file, func(r io.Reader) (*rivapi.UploadResponse, error) {
			return client.UploadStudy(ctx, file.Name, r)
		})
		log := logger.With("op", "upload_image", "viewport", int(ticket.Viewport), "seq", ticket.Seq, "file", file.Name, "duration", time.Since(start))
		if err != nil {
			log.Warn("upload failed", "error", err)
			return uploadDoneMsg{ticket: ticket, file: file, err: err}
		}
		info := studyInfo(resp)
		log.Info("upload complete", "frames", info.Frames, "cache", resp.CacheSource)
		return uploadDoneMsg{ticket: ticket, file: file, info: info}
	}
}

func uploadE2ECmd(ctx context.Context, client rivapi.Service, logger *slog.Logger, up viewer.E2EUpload) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		resp, err := uploadFile(up.File, func(r io.Reader) (*rivapi.UploadResponse, error) {
			return client.UploadE2E(ctx, up.File.Name, r, string(up.Type))
		})
		log := logger.With("op", "upload_e2e", "viewport", int(up.Ticket.Viewport), "seq", up.Ticket.Seq, "file", up.File.Name, "type", string(up.Type), "duration", time.Since(start))
		if err != nil {
			log.Warn("e2e upload failed", "error", err)
			return e2eDoneMsg{upload: up, err: err}
		}
		info := studyInfo(resp)
		log.Info("e2e upload complete", "frames", info.Frames, "cache", resp.CacheSource)
		return e2eDoneMsg{upload: up, info: info}
	}
}

func uploadFile(file viewer.RawFile, send func(io.Reader) (*rivapi.UploadResponse, error)) (*rivapi.UploadResponse, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer func() { _ = f.Close() }()

	return send(f)
}

func studyInfo(resp *rivapi.UploadResponse) viewer.StudyInfo {
	return viewer.StudyInfo{Frames: resp.NumberOfFrames, Source: viewer.SourceHandle(resp.DicomFilePath)}
}

func renderFrameCmd(ctx context.Context, client rivapi.Service, pool *viewer.ImagePool, logger *slog.Logger, req viewer.RenderRequest) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		log := logger.With("op", "view_dicom_png", "viewport", int(req.Viewport), "seq", req.Seq, "frame", req.Frame)

		frame, err := client.FetchFrame(ctx, string(req.Source), req.Frame)
		if err != nil {
			log.Warn("frame fetch failed", "duration", time.Since(start), "error", err)
			return frameMsg{req: req, err: err}
		}
		img, err := pool.Acquire(frame.Data)
		if err != nil {
			log.Warn("frame decode failed", "duration", time.Since(start), "content_type", frame.ContentType, "error", err)
			return frameMsg{req: req, err: err}
		}
		log.Debug("frame fetched", "duration", time.Since(start), "bytes", img.Size())
		return frameMsg{req: req, image: img}
	}
}

func probeCmd(ctx context.Context, client rivapi.Service, logger *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
		defer cancel()

		start := time.Now()
		resp, err := client.Probe(ctx)
		elapsed := time.Since(start)
		if err != nil {
			logger.Warn("connection test failed", "op", "test", "duration", elapsed, "error", err)
			return probeMsg{elapsed: elapsed, err: err}
		}
		logger.Info("connection test passed", "op", "test", "duration", elapsed, "message", resp.Message)
		return probeMsg{message: resp.Message, elapsed: elapsed}
	}
}

func convertCmd(ctx context.Context, client rivapi.Service, logger *slog.Logger, dir string, file viewer.RawFile) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		result, err := convertE2E(ctx, client, dir, file)
		log := logger.With("op", "convert", "file", file.Name, "duration", time.Since(start))
		if err != nil {
			log.Warn("convert failed", "error", err)
		} else {
			log.Info("convert saved", "path", result.Path, "entries", len(result.Entries))
		}
		return exportDoneMsg{op: "convert", result: result, err: err}
	}
}

func convertE2E(ctx context.Context, client rivapi.Service, dir string, file viewer.RawFile) (export.Result, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return export.Result{}, fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer func() { _ = f.Close() }()

	data, err := client.ConvertE2E(ctx, file.Name, f)
	if err != nil {
		return export.Result{}, err
	}
	return export.Save(dir, export.ConvertedArchive, data)
}

func extractCmd(ctx context.Context, client rivapi.Service, logger *slog.Logger, dir string, files []viewer.RawFile) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		result, err := extractMetadata(ctx, client, dir, files)
		log := logger.With("op", "dicom_to_mat_npy_zip", "files", len(files), "duration", time.Since(start))
		if err != nil {
			log.Warn("extract failed", "error", err)
		} else {
			log.Info("extract saved", "path", result.Path, "entries", len(result.Entries))
		}
		return exportDoneMsg{op: "extract", result: result, err: err}
	}
}

func extractMetadata(ctx context.Context, client rivapi.Service, dir string, files []viewer.RawFile) (export.Result, error) {
	parts := make([]rivapi.FilePart, 0, len(files))
	defer func() {
		for _, p := range parts {
			if c, ok := p.Reader.(io.Closer); ok {
				_ = c.Close()
			}
		}
	}()
	for _, file := range files {
		f, err := os.Open(file.Path)
		if err != nil {
			return export.Result{}, fmt.Errorf("open %s: %w", file.Name, err)
		}
		parts = append(parts, rivapi.FilePart{Name: file.Name, Reader: f})
	}

	data, err := client.ExtractMetadata(ctx, parts)
	if err != nil {
		return export.Result{}, err
	}
	return export.Save(dir, export.ExtractArchive, data)
}

func readActivityCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, ActivityLines)
		return activityMsg{lines: lines, err: err}
	}
}
