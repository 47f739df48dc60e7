package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// 使うのは *amqp.Channel のこのメソッドだけ
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

var _ amqpChannel = (*amqp.Channel)(nil)

type dialer func(url string) (amqpChannel, io.Closer, error)

func dialAMQP(url string) (amqpChannel, io.Closer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return ch, conn, nil
}

// Rabbit はtopic exchangeへJSONイベントを流す。
// ブローカーの再起動などでチャネルが閉じていれば、次の送信時につなぎ直す。
type Rabbit struct {
	mu       sync.Mutex
	url      string
	exchange string
	dial     dialer
	conn     io.Closer
	ch       amqpChannel
}

func DialRabbit(url, exchange string) (*Rabbit, error) {
	return newRabbit(url, exchange, dialAMQP)
}

func newRabbit(url, exchange string, dial dialer) (*Rabbit, error) {
	r := &Rabbit{url: url, exchange: exchange, dial: dial}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.connectLocked(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Rabbit) connectLocked() error {
	ch, conn, err := r.dial(r.url)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	if err := ch.ExchangeDeclare(r.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange %s: %w", r.exchange, err)
	}
	r.ch, r.conn = ch, conn
	return nil
}

// 閉じていればつなぎ直したチャネルを返す
func (r *Rabbit) channel() (amqpChannel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ch != nil && !r.ch.IsClosed() {
		return r.ch, nil
	}
	_ = r.closeLocked()
	if err := r.connectLocked(); err != nil {
		return nil, fmt.Errorf("amqp reconnect: %w", err)
	}
	return r.ch, nil
}

func (r *Rabbit) Publish(ctx context.Context, routingKey string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}

	ch, err := r.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, r.exchange, routingKey, false, false, msg)
	if !errors.Is(err, amqp.ErrClosed) {
		return err
	}

	//送信の直前に切れていた場合は1回だけつなぎ直す
	if ch, err = r.channel(); err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, r.exchange, routingKey, false, false, msg)
}

func (r *Rabbit) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeLocked()
}

func (r *Rabbit) closeLocked() error {
	var err error
	if r.ch != nil {
		_ = r.ch.Close()
		r.ch = nil
	}
	if r.conn != nil {
		err = r.conn.Close()
		r.conn = nil
	}
	return err
}

// Nop は何も送らない。
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
