package sync

import (
	"context"
	gosync "sync"
)

// Subscription управляет открытым потоком страницы
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
	once   gosync.Once
}

// Close останавливает поток и ждет завершения. После возврата onUpdate
// больше не вызывается. Нельзя вызывать из onUpdate.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

// Done закрывается, когда поток завершился
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err возвращает причину завершения: nil после Close или отмены контекста
func (s *Subscription) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

func (s *Subscription) finish(err error) {
	s.once.Do(func() {
		s.err = err
		close(s.done)
	})
}
