package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"scholarchat/internal/model"
)

type fakePaperLibrary struct {
	papers map[uint]*model.Paper
	nextID uint
}

func newFakePaperLibrary() *fakePaperLibrary {
	return &fakePaperLibrary{papers: map[uint]*model.Paper{}}
}

func (f *fakePaperLibrary) Create(paper *model.Paper) error {
	f.nextID++
	paper.ID = f.nextID
	f.papers[paper.ID] = paper
	return nil
}

func (f *fakePaperLibrary) GetByID(id uint) (*model.Paper, error) {
	p, ok := f.papers[id]
	if !ok {
		return nil, nil
	}
	// A fresh copy each read, like a row scanned from the database.
	cp := *p
	return &cp, nil
}

func (f *fakePaperLibrary) List(page, perPage int) ([]model.Paper, int64, error) {
	var out []model.Paper
	for _, p := range f.papers {
		out = append(out, *p)
	}
	return out, int64(len(f.papers)), nil
}

func (f *fakePaperLibrary) IncrementDownloadCount(id uint) error {
	f.papers[id].DownloadCount++
	return nil
}

func newPaperFixture(t *testing.T) (*PaperService, *fakePaperLibrary, *fakeUserStore, *fakeLedger) {
	t.Helper()
	library := newFakePaperLibrary()
	users := &fakeUserStore{users: map[uint]*model.User{
		1: {ID: 1, Username: "uploader", Role: model.RoleResearcher, HasherPoints: 5},
		2: {ID: 2, Username: "reader", Role: model.RoleMember, HasherPoints: 5},
		3: {ID: 3, Username: "broke", Role: model.RoleMember, HasherPoints: 0},
	}}
	ledger := &fakeLedger{}
	svc := NewPaperService(library, users, users, ledger, t.TempDir(), 1<<20, 1, nil)
	return svc, library, users, ledger
}

func TestUploadStoresFileAndRecord(t *testing.T) {
	svc, library, _, _ := newPaperFixture(t)

	paper, err := svc.Upload(UploadPaperInput{
		UploaderID: 1,
		Title:      "A Study of Things",
		FileName:   "study.pdf",
		FileSize:   11,
		File:       strings.NewReader("pdf content"),
	})
	require.NoError(t, err)
	require.NotZero(t, paper.ID)
	require.Equal(t, int64(11), paper.FileSize)
	require.Contains(t, paper.Authors, "1")
	require.NotNil(t, library.papers[paper.ID])
}

func TestUploadRejectsMembersAndBadFiles(t *testing.T) {
	svc, _, _, _ := newPaperFixture(t)

	_, err := svc.Upload(UploadPaperInput{
		UploaderID: 2,
		Title:      "Member Upload",
		FileName:   "m.pdf",
		File:       strings.NewReader("x"),
	})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Upload(UploadPaperInput{
		UploaderID: 1,
		Title:      "Wrong Type",
		FileName:   "notes.txt",
		File:       strings.NewReader("x"),
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Upload(UploadPaperInput{
		UploaderID: 1,
		Title:      "Too Big",
		FileName:   "big.pdf",
		FileSize:   2 << 20,
		File:       strings.NewReader("x"),
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDownloadDebitsReadersNotOwners(t *testing.T) {
	svc, library, users, ledger := newPaperFixture(t)
	uploaded, err := svc.Upload(UploadPaperInput{
		UploaderID: 1,
		Title:      "Paid Read",
		FileName:   "paid.pdf",
		FileSize:   1,
		File:       strings.NewReader("x"),
	})
	require.NoError(t, err)

	// A reader pays the download cost.
	paper, err := svc.Download(context.Background(), 2, uploaded.ID)
	require.NoError(t, err)
	require.Equal(t, 1, paper.DownloadCount)
	require.Equal(t, 1, library.papers[uploaded.ID].DownloadCount)
	require.Equal(t, 4.0, users.users[2].HasherPoints)
	require.Len(t, ledger.entries, 1)
	require.Equal(t, "paper_download", ledger.entries[0].Purpose)

	// The uploader downloads their own paper for free.
	_, err = svc.Download(context.Background(), 1, uploaded.ID)
	require.NoError(t, err)
	require.Equal(t, 5.0, users.users[1].HasherPoints)

	// An empty balance blocks the download.
	_, err = svc.Download(context.Background(), 3, uploaded.ID)
	require.ErrorIs(t, err, ErrInsufficientPoints)

	_, err = svc.Download(context.Background(), 2, 999)
	require.ErrorIs(t, err, ErrPaperNotFound)
}
