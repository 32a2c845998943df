package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/xxxsen/cardpub/cacheapi"
	cachewrap "github.com/xxxsen/cardpub/cacheapi/adaptor"
	"github.com/xxxsen/cardpub/davclient"
	"github.com/xxxsen/cardpub/utils"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/retry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	defaultListCacheSize = 256
	defaultListCacheTTL  = time.Minute
	tmpFileSuffix        = ".uploading"
	maxRetryTimes        = 100
)

var ErrItemFailed = errors.New("publish item failed")

// Publisher uploads local files to a WebDAV server. Every worker owns its own
// client, so the digest sessions never interleave.
type Publisher struct {
	c       *config
	factory davclient.Factory
	limiter *rate.Limiter
}

func New(factory davclient.Factory, opts ...Option) (*Publisher, error) {
	if factory == nil {
		return nil, fmt.Errorf("no client factory found")
	}
	c := &config{
		Thread:        4,
		RetryTimes:    3,
		RetryInterval: 2 * time.Second,
		SkipUnchanged: true,
		AllowTypes:    []string{"image/"},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Thread <= 0 {
		c.Thread = 1
	}
	if c.RetryTimes < 0 {
		c.RetryTimes = 0
	}
	if c.RetryTimes > maxRetryTimes {
		c.RetryTimes = maxRetryTimes
	}
	if c.ListCache == nil {
		c.ListCache = cachewrap.NewExpirableLruCache[string, *davclient.Listing](defaultListCacheSize, defaultListCacheTTL)
	}
	limit := rate.Inf
	if c.QPS > 0 {
		limit = rate.Limit(c.QPS)
	}
	burst := c.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Publisher{c: c, factory: factory, limiter: rate.NewLimiter(limit, burst)}, nil
}

func (p *Publisher) buildClients(n int) ([]davclient.IClient, error) {
	rs := make([]davclient.IClient, 0, n)
	for i := 0; i < n; i++ {
		cli, err := p.factory()
		if err != nil {
			return nil, fmt.Errorf("create webdav client failed, err:%w", err)
		}
		rs = append(rs, cli)
	}
	return rs, nil
}

// Publish uploads all items. A failed item does not stop the others, the
// report lists every item and the returned error wraps the first failure.
func (p *Publisher) Publish(ctx context.Context, items []*Item) (*Report, error) {
	start := time.Now()
	rp := &Report{Total: len(items), Items: make([]*ItemResult, 0, len(items))}
	if len(items) == 0 {
		return rp, nil
	}
	clients, err := p.buildClients(min(p.c.Thread, len(items)))
	if err != nil {
		return nil, err
	}
	pool := make(chan davclient.IClient, len(clients))
	for _, cli := range clients {
		pool <- cli
	}
	p.ensureDirs(ctx, clients[0], items)

	results := make([]*ItemResult, len(items))
	eg, subctx := errgroup.WithContext(ctx)
	eg.SetLimit(len(clients))
	logutil.GetLogger(ctx).Debug("start publish", zap.Int("item_cnt", len(items)), zap.Int("thread", len(clients)))
	for i, item := range items {
		eg.Go(func() error {
			cli := <-pool
			defer func() {
				pool <- cli
			}()
			results[i] = p.publishItem(subctx, cli, item)
			return nil
		})
	}
	_ = eg.Wait()
	var first error
	for _, rs := range results {
		rp.add(rs)
		if rs.err != nil && first == nil {
			first = rs.err
		}
	}
	rp.Cost = time.Since(start)
	logutil.GetLogger(ctx).Info("publish finish", zap.Int("total", rp.Total), zap.Int("uploaded", rp.Uploaded),
		zap.Int("skipped", rp.Skipped), zap.Int("filtered", rp.Filtered), zap.Int("failed", rp.Failed),
		zap.String("bytes", humanize.IBytes(uint64(rp.Bytes))), zap.Duration("cost", rp.Cost))
	if err := ctx.Err(); err != nil {
		return rp, err
	}
	if first != nil {
		return rp, fmt.Errorf("%w, failed:%d, first err:%w", ErrItemFailed, rp.Failed, first)
	}
	return rp, nil
}

// ensureDirs creates the remote directories up front, failures only get
// logged, the affected items fail on their own later.
func (p *Publisher) ensureDirs(ctx context.Context, cli davclient.IClient, items []*Item) {
	m := make(map[string]struct{}, len(items))
	for _, item := range items {
		if checkRemote(item.Remote) != nil {
			continue
		}
		if dir := path.Dir(item.Remote); dir != "/" {
			m[dir] = struct{}{}
		}
	}
	dirs := make([]string, 0, len(m))
	for dir := range m {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	for _, dir := range dirs {
		if err := cli.CreateDirectoryAll(ctx, dir); err != nil {
			logutil.GetLogger(ctx).Warn("create remote directory failed", zap.String("dir", dir), zap.Error(err))
		}
	}
}

func checkRemote(remote string) error {
	if !strings.HasPrefix(remote, "/") || strings.HasSuffix(remote, "/") {
		return fmt.Errorf("invalid remote path:%s, should be an absolute file path", remote)
	}
	return nil
}

func (p *Publisher) isAllowType(ct string) bool {
	if len(p.c.AllowTypes) == 0 {
		return true
	}
	for _, t := range p.c.AllowTypes {
		if strings.HasPrefix(ct, t) {
			return true
		}
	}
	return false
}

func (p *Publisher) loadListing(ctx context.Context, cli davclient.IClient, dir string) (*davclient.Listing, error) {
	return cacheapi.Load(ctx, p.c.ListCache, dir, func(ctx context.Context, k string) (*davclient.Listing, error) {
		l, err := cli.ListDirectory(ctx, k)
		if err != nil {
			if davclient.StatusCode(err) == http.StatusNotFound {
				return &davclient.Listing{}, nil
			}
			return nil, err
		}
		return l, nil
	})
}

func (p *Publisher) publishItem(ctx context.Context, cli davclient.IClient, item *Item) *ItemResult {
	start := time.Now()
	rs := &ItemResult{Item: *item}
	logger := logutil.GetLogger(ctx).With(zap.String("local", item.Local), zap.String("remote", item.Remote))
	fail := func(err error) *ItemResult {
		rs.Status = StatusFailed
		rs.err = err
		rs.Err = err.Error()
		rs.Cost = time.Since(start)
		logger.Error("publish item failed", zap.Error(err))
		return rs
	}
	if err := checkRemote(item.Remote); err != nil {
		return fail(err)
	}
	data, err := os.ReadFile(item.Local)
	if err != nil {
		return fail(fmt.Errorf("read local file failed, err:%w", err))
	}
	rs.Size = int64(len(data))
	rs.ContentType = mimetype.Detect(data).String()
	if !p.isAllowType(rs.ContentType) {
		rs.Status = StatusFiltered
		rs.Cost = time.Since(start)
		logger.Debug("content type not allowed, skip", zap.String("content_type", rs.ContentType))
		return rs
	}
	rs.Checksum = utils.ContentChecksum(data)

	dir, name := path.Split(item.Remote)
	var remote *davclient.FileEntry
	listing, lerr := p.loadListing(ctx, cli, dir)
	if lerr != nil {
		logger.Warn("list remote directory failed", zap.Error(lerr))
	} else if f, ok := listing.FindFile(name); ok {
		remote = f
	}
	if p.c.SkipUnchanged && remote != nil && remote.SizeBytes == rs.Size {
		rs.Status = StatusSkipped
		rs.Cost = time.Since(start)
		logger.Debug("remote file unchanged, skip")
		return rs
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return fail(fmt.Errorf("wait rate limiter failed, err:%w", err))
	}
	// 列目录失败时不确定远端是否存在, 按存在处理
	replace := lerr != nil || remote != nil
	if err := p.upload(ctx, cli, item.Remote, data, replace); err != nil {
		return fail(err)
	}
	cacheapi.Invalidate(ctx, p.c.ListCache, dir)
	rs.Status = StatusUploaded
	rs.Cost = time.Since(start)
	speed := "-"
	if ms := rs.Cost.Milliseconds(); ms > 0 {
		speed = humanize.IBytes(uint64(float64(rs.Size)*1000/float64(ms))) + "/s"
	}
	logger.Info("publish item succ", zap.String("size", humanize.IBytes(uint64(rs.Size))),
		zap.String("checksum", rs.Checksum), zap.Duration("cost", rs.Cost), zap.String("speed", speed))
	return rs
}

func isRetryable(err error) bool {
	var terr *davclient.TransportError
	if errors.As(err, &terr) {
		return true
	}
	code := davclient.StatusCode(err)
	return code >= http.StatusInternalServerError || code == http.StatusTooManyRequests
}

// upload writes data to a hidden tmp file then moves it over remote, readers
// never see a half written file.
func (p *Publisher) upload(ctx context.Context, cli davclient.IClient, remote string, data []byte, replace bool) error {
	dir, name := path.Split(remote)
	tmp := dir + "." + name + "." + uuid.NewString() + tmpFileSuffix
	var permanent error
	err := retry.RetryDo(ctx, uint32(p.c.RetryTimes), p.c.RetryInterval, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			permanent = err
			return nil
		}
		err := p.uploadOnce(ctx, cli, tmp, remote, data, replace)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			permanent = err
			return nil
		}
		logutil.GetLogger(ctx).Error("upload file failed, wait retry", zap.String("remote", remote), zap.Error(err))
		return err
	})
	if permanent != nil {
		return permanent
	}
	return err
}

func (p *Publisher) uploadOnce(ctx context.Context, cli davclient.IClient, tmp string, remote string, data []byte, replace bool) error {
	if _, err := cli.UploadFile(ctx, tmp, data); err != nil {
		return fmt.Errorf("upload tmp file failed, err:%w", err)
	}
	// MOVE覆盖已存在文件时部分服务端返回204, 先删掉旧文件
	if replace {
		if err := cli.DeleteEntry(ctx, remote); err != nil && davclient.StatusCode(err) != http.StatusNotFound {
			p.cleanTmp(ctx, cli, tmp)
			return fmt.Errorf("remove old file failed, err:%w", err)
		}
	}
	if err := cli.MoveEntry(ctx, tmp, remote); err != nil {
		p.cleanTmp(ctx, cli, tmp)
		return fmt.Errorf("move tmp file failed, err:%w", err)
	}
	return nil
}

func (p *Publisher) cleanTmp(ctx context.Context, cli davclient.IClient, tmp string) {
	if err := cli.DeleteEntry(ctx, tmp); err != nil {
		logutil.GetLogger(ctx).Warn("remove tmp file failed", zap.String("tmp", tmp), zap.Error(err))
	}
}

// CollectDir maps every regular file under localDir to the same relative
// path under remoteRoot. Hidden files and directories are skipped.
func CollectDir(localDir string, remoteRoot string) ([]*Item, error) {
	rs := make([]*Item, 0)
	err := filepath.WalkDir(localDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != localDir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		rs = append(rs, &Item{Local: p, Remote: path.Join("/", remoteRoot, filepath.ToSlash(rel))})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk local dir failed, dir:%s, err:%w", localDir, err)
	}
	sort.Slice(rs, func(i, j int) bool {
		return rs[i].Remote < rs[j].Remote
	})
	return rs, nil
}
