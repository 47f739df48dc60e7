package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted は全試行が失敗したときに返る。最後のエラーもラップされる。
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy は最大試行回数と待ち時間を持つリトライ方針。
// Multiplier が 1 以下なら固定間隔、それ以上なら MaxDelay を上限に伸ばす。
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Multiplier  float64
	MaxDelay    time.Duration

	// テスト用。nil ならタイマーで待つ。
	Sleep func(ctx context.Context, d time.Duration) error
}

// Fixed は固定間隔のポリシー
func Fixed(attempts int, delay time.Duration) Policy {
	return Policy{MaxAttempts: attempts, Delay: delay}
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Retryable は err を「もう一度試してよい」エラーとして印をつける。
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

func IsRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// Do は fn が成功するか、リトライ不可のエラーを返すか、試行回数を使い切るまで呼ぶ。
// attempt は 1 から始まる。
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.Delay
	var last error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}

		var re *retryableError
		if !errors.As(err, &re) {
			return err
		}
		last = re.err

		if attempt == attempts {
			break
		}
		if err := p.sleep(ctx, delay); err != nil {
			return err
		}
		delay = p.next(delay)
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, last)
}

func (p Policy) next(d time.Duration) time.Duration {
	if p.Multiplier <= 1 {
		return d
	}
	n := time.Duration(float64(d) * p.Multiplier)
	if p.MaxDelay > 0 && n > p.MaxDelay {
		return p.MaxDelay
	}
	return n
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
