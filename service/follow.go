package service

import (
	"context"
	"path/filepath"
	"time"

	"logspy/stream"

	"github.com/fsnotify/fsnotify"
	lf "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Appends are also polled for, in case the filesystem drops notifications.
const pollInterval = time.Second

type tail struct {
	name   string
	src    *source
	stream *stream.Stream
}

func (t *tail) read(ctx context.Context, buf []byte, log *lf.Entry) {
	if err := drain(ctx, t.src, t.stream, buf); err != nil && ctx.Err() == nil {
		log.WithField("source", t.name).Error("Cannot read input: ", err)
	}
}

// follow keeps reading the given files as they grow. When ctx is done the
// files are read one last time, their pending lines flushed and closed.
func follow(ctx context.Context, tails []*tail, buf []byte, log *lf.Entry) error {
	defer func() {
		for _, t := range tails {
			t.read(context.Background(), buf, log)
			t.stream.Close()
			t.src.Close()
		}
	}()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	byPath := make(map[string]*tail, len(tails))
	watched := make(map[string]bool)
	for _, t := range tails {
		abs, err := filepath.Abs(t.name)
		if err != nil {
			abs = t.name
		}
		byPath[abs] = t
		dir := filepath.Dir(abs)
		if watched[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			log.WithField("dir", dir).Warn("Cannot watch directory, polling only: ", err)
		}
		watched[dir] = true
	}
	log.WithField("files", len(tails)).Info("Following inputs")

	changed := make(chan *tail, 64)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer fsw.Close()
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev, ok := <-fsw.Events:
				if !ok {
					return nil
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				t, ok := byPath[ev.Name]
				if !ok {
					continue
				}
				select {
				case changed <- t:
				case <-gctx.Done():
					return nil
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return nil
				}
				log.Warn("Watcher error: ", err)
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case t := <-changed:
				t.read(gctx, buf, log)
			case <-ticker.C:
				for _, t := range tails {
					t.read(gctx, buf, log)
				}
			}
		}
	})

	return g.Wait()
}
