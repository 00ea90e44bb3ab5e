package inmemory

import (
	"log/slog"
	"sync"

	"github.com/sharetube/jamroom/internal/metrics"
	"github.com/sharetube/jamroom/internal/repository/connection"
)

type repo struct {
	connList map[connection.Conn]string
	idList   map[string]connection.Conn
	mu       sync.RWMutex
	logger   *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		connList: make(map[connection.Conn]string),
		idList:   make(map[string]connection.Conn),
		logger:   logger,
	}
}

// Add binds conn to memberId. A previous connection of the same member is
// replaced and closed, so the last connection wins.
func (r *repo) Add(conn connection.Conn, memberId string) error {
	funcName := "connection.inmemory.Add"
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug(funcName, "member_id", memberId)
	if _, ok := r.connList[conn]; ok {
		r.logger.Info(funcName, "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	if prev, ok := r.idList[memberId]; ok {
		delete(r.connList, prev)
		prev.Close()
		metrics.WsConnections.Dec()
		r.logger.Debug(funcName, "member_id", memberId, "result", "replaced previous connection")
	}

	r.connList[conn] = memberId
	r.idList[memberId] = conn
	metrics.WsConnections.Inc()

	return nil
}

// RemoveByConn drops conn if it is still registered. It leaves a newer
// connection of the same member untouched.
func (r *repo) RemoveByConn(conn connection.Conn) (string, error) {
	funcName := "connection.inmemory.RemoveByConn"
	r.mu.Lock()
	defer r.mu.Unlock()

	memberId, ok := r.connList[conn]
	if !ok {
		r.logger.Debug(funcName, "error", connection.ErrNotFound)
		return "", connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, memberId)
	metrics.WsConnections.Dec()

	r.logger.Debug(funcName, "member_id", memberId)
	return memberId, nil
}

func (r *repo) RemoveByMemberId(memberId string) (connection.Conn, error) {
	funcName := "connection.inmemory.RemoveByMemberId"
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug(funcName, "member_id", memberId)
	conn, ok := r.idList[memberId]
	if !ok {
		r.logger.Debug(funcName, "error", connection.ErrNotFound)
		return nil, connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, memberId)
	metrics.WsConnections.Dec()

	return conn, nil
}

func (r *repo) GetMemberId(conn connection.Conn) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	memberId, ok := r.connList[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	return memberId, nil
}

func (r *repo) GetConn(memberId string) (connection.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.idList[memberId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}
