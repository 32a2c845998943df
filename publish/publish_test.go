package publish

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/cardpub/cacheapi"
	"github.com/xxxsen/cardpub/davclient"
)

var (
	pngData  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegData = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	textData = []byte("hello world, this is plain text")
)

// memStore is a tiny WebDAV server state shared by every fake client.
type memStore struct {
	mu        sync.Mutex
	files     map[string][]byte
	dirs      map[string]bool
	calls     []string
	failName  string
	failCode  int
	transient int
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}, dirs: map[string]bool{"/": true}}
}

func davErr(op string, p string, code int) error {
	return &davclient.WebDavError{Op: op, Path: p, StatusCode: code, Status: http.StatusText(code)}
}

func cleanDir(p string) string {
	return path.Clean("/" + p)
}

func (s *memStore) record(call string) {
	s.calls = append(s.calls, call)
}

func (s *memStore) callList() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

type fakeClient struct {
	s *memStore
}

func (f *fakeClient) ListDirectory(ctx context.Context, dir string) (*davclient.Listing, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.record("PROPFIND " + dir)
	d := cleanDir(dir)
	if !f.s.dirs[d] {
		return nil, davErr("list directory", dir, http.StatusNotFound)
	}
	rs := &davclient.Listing{}
	for p, data := range f.s.files {
		if path.Dir(p) != d {
			continue
		}
		size := int64(len(data))
		rs.Files = append(rs.Files, &davclient.FileEntry{Path: p, Name: path.Base(p), SizeBytes: size, SizeFormatted: davclient.FormatSize(size)})
	}
	return rs, nil
}

func (f *fakeClient) GetFile(ctx context.Context, file string) (davclient.Payload, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	data, ok := f.s.files[file]
	if !ok {
		return davclient.Payload{}, davErr("get file", file, http.StatusNotFound)
	}
	return davclient.BinaryPayload(data), nil
}

func (f *fakeClient) UploadFile(ctx context.Context, file string, data []byte) (*davclient.UploadResult, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.record("PUT " + file)
	if len(f.s.failName) != 0 && strings.Contains(file, f.s.failName) {
		return nil, davErr("upload file", file, f.s.failCode)
	}
	if f.s.transient > 0 {
		f.s.transient--
		return nil, davErr("upload file", file, http.StatusBadGateway)
	}
	if !f.s.dirs[path.Dir(file)] {
		return nil, davErr("upload file", file, http.StatusConflict)
	}
	f.s.files[file] = append([]byte(nil), data...)
	return &davclient.UploadResult{Success: true, StatusCode: http.StatusCreated}, nil
}

func (f *fakeClient) DeleteEntry(ctx context.Context, file string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.record("DELETE " + file)
	if _, ok := f.s.files[file]; !ok {
		return davErr("delete entry", file, http.StatusNotFound)
	}
	delete(f.s.files, file)
	return nil
}

func (f *fakeClient) CreateDirectory(ctx context.Context, dir string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.record("MKCOL " + dir)
	d := cleanDir(dir)
	if !f.s.dirs[path.Dir(d)] {
		return davErr("create directory", dir, http.StatusConflict)
	}
	f.s.dirs[d] = true
	return nil
}

func (f *fakeClient) CreateDirectoryAll(ctx context.Context, dir string) error {
	cur := "/"
	for _, item := range strings.Split(strings.Trim(dir, "/"), "/") {
		cur = path.Join(cur, item)
		if err := f.CreateDirectory(ctx, cur+"/"); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeClient) MoveEntry(ctx context.Context, src string, dst string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.record("MOVE " + src + " " + dst)
	data, ok := f.s.files[src]
	if !ok {
		return davErr("move entry", src, http.StatusNotFound)
	}
	if _, ok := f.s.files[dst]; ok {
		// overwrite answers 204, which MoveEntry does not accept
		return davErr("move entry", src, http.StatusNoContent)
	}
	delete(f.s.files, src)
	f.s.files[dst] = data
	return nil
}

func (f *fakeClient) Exists(ctx context.Context, file string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	_, ok := f.s.files[file]
	return ok, nil
}

func newTestPublisher(t *testing.T, s *memStore, opts ...Option) *Publisher {
	factory := func() (davclient.IClient, error) {
		return &fakeClient{s: s}, nil
	}
	opts = append([]Option{WithRetry(3, time.Millisecond), WithListCache(cacheapi.Nop[string, *davclient.Listing]())}, opts...)
	p, err := New(factory, opts...)
	require.NoError(t, err)
	return p
}

func writeLocal(t *testing.T, dir string, name string, data []byte) string {
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, data, 0644))
	return p
}

func TestPublishViaTmpAndMove(t *testing.T) {
	dir := t.TempDir()
	s := newMemStore()
	p := newTestPublisher(t, s, WithThread(2), WithRateLimit(1000, 10))
	items := []*Item{
		{Local: writeLocal(t, dir, "a.png", pngData), Remote: "/products/a.png"},
		{Local: writeLocal(t, dir, "b.jpg", jpegData), Remote: "/products/shoes/b.jpg"},
		{Local: writeLocal(t, dir, "c.txt", textData), Remote: "/products/c.txt"},
	}
	rp, err := p.Publish(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, 3, rp.Total)
	assert.Equal(t, 2, rp.Uploaded)
	assert.Equal(t, 1, rp.Filtered)
	assert.Equal(t, int64(len(pngData)+len(jpegData)), rp.Bytes)
	require.Len(t, rp.Items, 3)
	assert.Equal(t, "image/png", rp.Items[0].ContentType)
	assert.Len(t, rp.Items[0].Checksum, 16)
	assert.Equal(t, StatusFiltered, rp.Items[2].Status)

	assert.Equal(t, pngData, s.files["/products/a.png"])
	assert.Equal(t, jpegData, s.files["/products/shoes/b.jpg"])
	_, ok := s.files["/products/c.txt"]
	assert.False(t, ok)
	for name := range s.files {
		assert.False(t, strings.HasSuffix(name, tmpFileSuffix), name)
	}

	var tmpPut, move bool
	for _, call := range s.callList() {
		if strings.HasPrefix(call, "PUT /products/.a.png.") && strings.HasSuffix(call, tmpFileSuffix) {
			tmpPut = true
		}
		if strings.HasPrefix(call, "MOVE /products/.a.png.") && strings.HasSuffix(call, " /products/a.png") {
			move = true
		}
		assert.NotEqual(t, "PUT /products/a.png", call)
	}
	assert.True(t, tmpPut)
	assert.True(t, move)
}

func TestPublishSkipUnchanged(t *testing.T) {
	dir := t.TempDir()
	s := newMemStore()
	p := newTestPublisher(t, s)
	local := writeLocal(t, dir, "a.png", pngData)
	items := []*Item{{Local: local, Remote: "/cards/a.png"}}
	rp, err := p.Publish(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, 1, rp.Uploaded)

	rp, err = p.Publish(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, 1, rp.Skipped)
	assert.Equal(t, 0, rp.Uploaded)

	// 内容大小变化后重新上传, 旧文件先被删除再move
	bigger := append(append([]byte(nil), pngData...), 0x00, 0x01, 0x02)
	writeLocal(t, dir, "a.png", bigger)
	rp, err = p.Publish(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, 1, rp.Uploaded)
	assert.Equal(t, bigger, s.files["/cards/a.png"])
	assert.Contains(t, s.callList(), "DELETE /cards/a.png")
}

func TestPublishWithoutSkip(t *testing.T) {
	dir := t.TempDir()
	s := newMemStore()
	p := newTestPublisher(t, s, WithSkipUnchanged(false), WithAllowTypes())
	items := []*Item{{Local: writeLocal(t, dir, "note.txt", textData), Remote: "/notes/note.txt"}}
	for i := 0; i < 2; i++ {
		rp, err := p.Publish(context.Background(), items)
		require.NoError(t, err)
		assert.Equal(t, 1, rp.Uploaded)
	}
	assert.Equal(t, textData, s.files["/notes/note.txt"])
}

func TestPublishItemFailure(t *testing.T) {
	dir := t.TempDir()
	s := newMemStore()
	s.failName = "bad"
	s.failCode = http.StatusForbidden
	p := newTestPublisher(t, s)
	items := []*Item{
		{Local: writeLocal(t, dir, "good.png", pngData), Remote: "/x/good.png"},
		{Local: writeLocal(t, dir, "bad.png", pngData), Remote: "/x/bad.png"},
		{Local: filepath.Join(dir, "missing.png"), Remote: "/x/missing.png"},
		{Local: writeLocal(t, dir, "rel.png", pngData), Remote: "x/rel.png"},
	}
	rp, err := p.Publish(context.Background(), items)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrItemFailed))
	assert.Equal(t, 1, rp.Uploaded)
	assert.Equal(t, 3, rp.Failed)
	assert.Equal(t, StatusFailed, rp.Items[1].Status)
	assert.Equal(t, http.StatusForbidden, davclient.StatusCode(rp.Items[1].err))
	assert.NotEmpty(t, rp.Items[2].Err)
	assert.NotEmpty(t, rp.Items[3].Err)

	// 403不重试
	puts := 0
	for _, call := range s.callList() {
		if strings.HasPrefix(call, "PUT /x/.bad.png.") {
			puts++
		}
	}
	assert.Equal(t, 1, puts)
}

func TestPublishRetryTransient(t *testing.T) {
	dir := t.TempDir()
	s := newMemStore()
	s.transient = 1
	p := newTestPublisher(t, s)
	items := []*Item{{Local: writeLocal(t, dir, "a.jpg", jpegData), Remote: "/r/a.jpg"}}
	rp, err := p.Publish(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, 1, rp.Uploaded)
	assert.Equal(t, jpegData, s.files["/r/a.jpg"])
}

func countPuts(s *memStore, prefix string) int {
	puts := 0
	for _, call := range s.callList() {
		if strings.HasPrefix(call, "PUT "+prefix) {
			puts++
		}
	}
	return puts
}

func TestPublishRetryTimes(t *testing.T) {
	tests := []struct {
		retry     int
		transient int
		puts      int
		ok        bool
	}{
		{retry: 0, transient: 1, puts: 1, ok: false},
		{retry: -1, transient: 1, puts: 1, ok: false},
		{retry: 2, transient: 5, puts: 3, ok: false},
		{retry: 2, transient: 2, puts: 3, ok: true},
	}
	for _, tst := range tests {
		dir := t.TempDir()
		s := newMemStore()
		s.transient = tst.transient
		p := newTestPublisher(t, s, WithRetry(tst.retry, time.Millisecond))
		items := []*Item{{Local: writeLocal(t, dir, "a.jpg", jpegData), Remote: "/r/a.jpg"}}
		rp, err := p.Publish(context.Background(), items)
		assert.Equal(t, tst.puts, countPuts(s, "/r/.a.jpg."), "retry:%d", tst.retry)
		if tst.ok {
			assert.NoError(t, err)
			assert.Equal(t, 1, rp.Uploaded)
			continue
		}
		assert.ErrorIs(t, err, ErrItemFailed)
		assert.Equal(t, http.StatusBadGateway, davclient.StatusCode(rp.Items[0].err))
	}
}

func TestPublishRetryStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	s := newMemStore()
	s.transient = 100
	p := newTestPublisher(t, s, WithRetry(50, 20*time.Millisecond))
	items := []*Item{{Local: writeLocal(t, dir, "a.jpg", jpegData), Remote: "/r/a.jpg"}}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := p.Publish(ctx, items)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Less(t, countPuts(s, "/r/.a.jpg."), 10)
}

func TestPublishEmpty(t *testing.T) {
	p := newTestPublisher(t, newMemStore())
	rp, err := p.Publish(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, rp.Total)
}

func TestNewWithoutFactory(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(&davclient.TransportError{Method: "PUT", Path: "/a", Err: errors.New("conn reset")}))
	assert.True(t, isRetryable(davErr("upload file", "/a", http.StatusServiceUnavailable)))
	assert.True(t, isRetryable(davErr("upload file", "/a", http.StatusTooManyRequests)))
	assert.False(t, isRetryable(davErr("upload file", "/a", http.StatusForbidden)))
	assert.False(t, isRetryable(davclient.ErrAuthenticationFailed))
}

func TestCollectDir(t *testing.T) {
	dir := t.TempDir()
	writeLocal(t, dir, "a.png", pngData)
	writeLocal(t, dir, "shoes/b.jpg", jpegData)
	writeLocal(t, dir, ".hidden.png", pngData)
	writeLocal(t, dir, ".git/config", textData)
	items, err := CollectDir(dir, "/products")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "/products/a.png", items[0].Remote)
	assert.Equal(t, filepath.Join(dir, "a.png"), items[0].Local)
	assert.Equal(t, "/products/shoes/b.jpg", items[1].Remote)

	items, err = CollectDir(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "/a.png", items[0].Remote)

	_, err = CollectDir(filepath.Join(dir, "nope"), "/")
	assert.Error(t, err)
}
