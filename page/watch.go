package page

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// mutationBinding is the JS → Go callback the injected MutationObserver
// reports through.
const mutationBinding = "__collector_mutations"

// mutationObserverJS installs a document-wide MutationObserver that
// pings the binding on every mutation. Idempotent per page.
const mutationObserverJS = `() => {
	if (window.__collector_observer) { return; }
	const obs = new MutationObserver(() => {
		try { window.__collector_mutations("m"); } catch (e) {}
	});
	obs.observe(document.documentElement, {
		subtree: true, childList: true, characterData: true, attributes: true,
	});
	window.__collector_observer = obs;
}`

// Watch keeps a dedicated tab open on the page and signals on the
// returned channel once DOM mutations settle for the debounce window.
// A burst of mutations collapses into a single signal, and at most one
// signal is pending at a time. The tab closes when ctx is canceled.
func (s *BrowserSource) Watch(ctx context.Context, debounce time.Duration) (<-chan struct{}, error) {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	b, err := s.ensureBrowser()
	if err != nil {
		return nil, err
	}
	pg, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("page: create watch tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, s.navWait)
	defer cancel()
	if err := pg.Context(navCtx).Navigate(s.url); err != nil {
		pg.Close()
		return nil, fmt.Errorf("page: navigate %s: %w", s.url, err)
	}
	if err := pg.Context(navCtx).WaitLoad(); err != nil {
		s.logger.Warn("page: wait load timeout", "url", s.url, "error", err)
	}

	err = proto.RuntimeAddBinding{Name: mutationBinding}.Call(pg)
	if err != nil {
		s.logger.Warn("page: add mutation binding failed (may already exist)", "error", err)
	}
	if _, err := pg.Eval(mutationObserverJS); err != nil {
		pg.Close()
		return nil, fmt.Errorf("page: inject mutation observer: %w", err)
	}

	raw := make(chan struct{}, 64)
	go pg.Context(ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != mutationBinding {
			return
		}
		select {
		case raw <- struct{}{}:
		default:
		}
	})()

	go func() {
		<-ctx.Done()
		pg.Close()
	}()

	s.logger.Info("page: mutation watch started", "url", s.url, "debounce", debounce)
	return debounceSignals(ctx, raw, debounce), nil
}

// debounceSignals emits one signal per burst: the output fires only
// after the input stays quiet for a full window. The output channel
// holds at most one pending signal.
func debounceSignals(ctx context.Context, in <-chan struct{}, window time.Duration) <-chan struct{} {
	out := make(chan struct{}, 1)
	go func() {
		var timer *time.Timer
		var timerC <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case <-in:
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(window)
				timerC = timer.C
			case <-timerC:
				timerC = nil
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out
}
