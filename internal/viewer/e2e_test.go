package viewer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestE2EUploadLoadsAtFirstFrame(t *testing.T) {
	pool := &ImagePool{}
	file := RawFile{Name: "scan.e2e", Path: "/data/scan.e2e"}

	route, err := Classify(file.Name)
	require.NoError(t, err)
	require.Equal(t, RouteE2EPending, route)

	s := NewSession().BeginE2E(ViewportOne, file)
	wf := s.Workflow(ViewportOne)
	require.Equal(t, AwaitingType, wf.State)
	require.Equal(t, file, wf.File)
	require.Equal(t, ViewportOne, wf.Target)

	s, up, err := s.SelectType(ViewportOne, ScanOCT)
	require.NoError(t, err)
	require.Equal(t, ScanOCT, up.Type)
	require.Equal(t, file, up.File)
	require.Equal(t, TypeSelected, s.Workflow(ViewportOne).State)
	require.True(t, s.Uploading(ViewportOne))

	s, req, err := s.E2EUploaded(up, StudyInfo{Frames: 50, Source: "h1"})
	require.NoError(t, err)
	require.Equal(t, NoPendingFile, s.Workflow(ViewportOne).State)
	require.Equal(t, ViewportOne, req.Viewport)
	require.Equal(t, 0, req.Frame)
	require.Equal(t, SourceHandle("h1"), req.Source)

	s, ok := s.CommitRender(RenderResult{Request: req, Image: acquire(t, pool)})
	require.True(t, ok)
	vp := s.Viewport(ViewportOne)
	require.Equal(t, "frame 1 of 50", vp.FrameLabel())
	require.Equal(t, "scan.e2e", vp.FileName)
}

func TestNoRenderWhileAwaitingType(t *testing.T) {
	pool := &ImagePool{}
	s := loadStudy(t, NewSession(), pool, ViewportOne, 50, "h1")
	s = loadStudy(t, s, pool, ViewportTwo, 50, "h2")
	s = s.SetBinding(true)

	s = s.BeginE2E(ViewportTwo, RawFile{Name: "scan.e2e"})

	_, _, err := s.BeginRender(ViewportTwo, 0)
	require.ErrorIs(t, err, ErrAwaitingClassification)

	_, _, err = s.Navigate(ViewportTwo, 3)
	require.ErrorIs(t, err, ErrAwaitingClassification)

	_, reqs, err := s.Navigate(ViewportOne, 3)
	require.NoError(t, err)
	require.Len(t, reqs, 1, "bound partner awaiting a type must not render")

	s, _, err = s.SelectType(ViewportTwo, ScanSLO)
	require.NoError(t, err)
	_, _, err = s.BeginRender(ViewportTwo, 0)
	require.ErrorIs(t, err, ErrAwaitingClassification, "type chosen but upload not finished")
}

func TestBeginE2EUnloadsTarget(t *testing.T) {
	pool := &ImagePool{}
	s := loadStudy(t, NewSession(), pool, ViewportOne, 10, "h1")
	img := s.Viewport(ViewportOne).Image
	s, inflight, err := s.BeginRender(ViewportOne, 5)
	require.NoError(t, err)

	s = s.BeginE2E(ViewportOne, RawFile{Name: "next.e2e"})
	require.True(t, img.Released())
	require.False(t, s.Viewport(ViewportOne).Loaded())

	late := acquire(t, pool)
	s, ok := s.CommitRender(RenderResult{Request: inflight, Image: late})
	require.False(t, ok)
	require.Nil(t, s.Viewport(ViewportOne).Image)
	require.Zero(t, pool.Live())
}

func TestE2EFailureReturnsToAwaitingType(t *testing.T) {
	s := NewSession().BeginE2E(ViewportOne, RawFile{Name: "scan.e2e"})
	s, up, err := s.SelectType(ViewportOne, ScanSLO)
	require.NoError(t, err)

	s, err = s.E2EFailed(up, errors.New("SLO data not found in file"))
	require.Error(t, err)
	require.Equal(t, KindClassificationFailed, KindOf(err))
	require.Contains(t, err.Error(), "SLO data not found")

	wf := s.Workflow(ViewportOne)
	require.Equal(t, AwaitingType, wf.State)
	require.Empty(t, wf.Selected)
	require.False(t, s.Viewport(ViewportOne).Loaded(), "must not fall back to a direct upload")

	s, retry, err := s.SelectType(ViewportOne, ScanOCT)
	require.NoError(t, err)
	require.NotEqual(t, up.Ticket, retry.Ticket)

	// the first attempt reporting again cannot disturb the retry
	_, err = s.E2EFailed(up, errors.New("late"))
	require.NoError(t, err)
	_, _, err = s.E2EUploaded(up, StudyInfo{Frames: 3, Source: "x"})
	require.ErrorIs(t, err, ErrSuperseded)

	_, _, err = s.E2EUploaded(retry, StudyInfo{Frames: 3, Source: "x"})
	require.NoError(t, err)
}

func TestE2EUploadedWithEmptyStudyStaysSelectable(t *testing.T) {
	s := NewSession().BeginE2E(ViewportOne, RawFile{Name: "scan.e2e"})
	s, up, err := s.SelectType(ViewportOne, ScanOCT)
	require.NoError(t, err)

	s, _, err = s.E2EUploaded(up, StudyInfo{Frames: 0, Source: "h"})
	require.Equal(t, KindClassificationFailed, KindOf(err))
	require.Equal(t, AwaitingType, s.Workflow(ViewportOne).State)
}

func TestE2EWorkflowsAreIndependent(t *testing.T) {
	a := RawFile{Name: "left.e2e"}
	b := RawFile{Name: "right.E2E"}
	s := NewSession().BeginE2E(ViewportOne, a)
	s = s.BeginE2E(ViewportTwo, b)

	s, upB, err := s.SelectType(ViewportTwo, ScanSLO)
	require.NoError(t, err)
	require.Equal(t, b, upB.File)
	require.Equal(t, AwaitingType, s.Workflow(ViewportOne).State)

	s, _, err = s.E2EUploaded(upB, StudyInfo{Frames: 12, Source: "right"})
	require.NoError(t, err)
	require.True(t, s.Viewport(ViewportTwo).Loaded())
	require.Equal(t, AwaitingType, s.Workflow(ViewportOne).State)
	require.Equal(t, a, s.Workflow(ViewportOne).File)
	require.False(t, s.Viewport(ViewportOne).Loaded())
}

func TestSelectTypeRequiresAwaitingType(t *testing.T) {
	_, _, err := NewSession().SelectType(ViewportOne, ScanOCT)
	require.ErrorIs(t, err, ErrNoPendingFile)

	s := NewSession().BeginE2E(ViewportOne, RawFile{Name: "scan.e2e"})
	s, _, err = s.SelectType(ViewportOne, ScanOCT)
	require.NoError(t, err)
	_, _, err = s.SelectType(ViewportOne, ScanSLO)
	require.ErrorIs(t, err, ErrTypeAlreadySelected)

	_, _, err = NewSession().BeginE2E(ViewportTwo, RawFile{Name: "x.e2e"}).SelectType(ViewportTwo, "FUNDUS")
	require.Error(t, err)
}

func TestBeginUploadDropsPendingE2E(t *testing.T) {
	s := NewSession().BeginE2E(ViewportOne, RawFile{Name: "scan.e2e"})
	s, up, err := s.SelectType(ViewportOne, ScanOCT)
	require.NoError(t, err)

	file := RawFile{Name: "other.dcm"}
	s, ticket := s.BeginUpload(ViewportOne, file)
	require.Equal(t, NoPendingFile, s.Workflow(ViewportOne).State)

	_, _, err = s.E2EUploaded(up, StudyInfo{Frames: 5, Source: "e2e"})
	require.ErrorIs(t, err, ErrSuperseded)

	s, _, err = s.LoadStudy(ticket, file, StudyInfo{Frames: 5, Source: "dcm"})
	require.NoError(t, err)
	require.Equal(t, SourceHandle("dcm"), s.Viewport(ViewportOne).Source)
}

func TestParseScanType(t *testing.T) {
	tests := []struct {
		in   string
		want ScanType
		ok   bool
	}{
		{"slo", ScanSLO, true},
		{" OCT ", ScanOCT, true},
		{"Oct", ScanOCT, true},
		{"fundus", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := ParseScanType(tt.in)
		if tt.ok {
			require.NoError(t, err, tt.in)
		} else {
			require.Error(t, err, tt.in)
		}
		require.Equal(t, tt.want, got, tt.in)
	}
}
