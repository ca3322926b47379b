// Package journal 用 sqlite 记录数据集的提交与修复过程
//
// 每次 commit/repair 先写入完整的移动计划，再逐个标记已完成的移动。
// 进程在中途被中断时，未结束的批次说明了哪些文件已经移动、哪些还在原处。
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Cubiaa/tft-labeler/dataset"
)

// StatusRunning 已开始但尚未结束的批次
const StatusRunning = "running"

// ErrUnknownBatch 批次或移动序号不存在
var ErrUnknownBatch = errors.New("日志中没有该批次")

var _ dataset.Recorder = (*Journal)(nil)

// Journal 提交日志
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Batch 一次 commit 或 repair
type Batch struct {
	ID         string
	Kind       string
	Source     string
	Target     string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time // 未结束时为零值
	Total      int       // 计划移动的文件数
	Moved      int       // 已完成的移动数
}

// Finished 批次是否已结束（无论成功与否）
func (b Batch) Finished() bool {
	return !b.FinishedAt.IsZero()
}

// MoveEntry 批次中的一次文件移动
type MoveEntry struct {
	Seq   int
	From  string
	To    string
	Moved bool
}

// Open 打开（必要时创建）日志数据库并执行迁移
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("无法创建日志目录: %v", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("无法打开日志数据库 %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("无法设置日志数据库: %w", err)
	}

	j := &Journal{db: db, now: time.Now}
	if err := j.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// Close 关闭数据库
func (j *Journal) Close() error {
	return j.db.Close()
}

// BeginBatch 记录一次批量移动的完整计划，返回批次 ID
func (j *Journal) BeginBatch(kind, source, target string, moves []dataset.Move) (string, error) {
	id := uuid.New().String()

	tx, err := j.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO batches (batch_id, kind, source, target, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, kind, source, target, StatusRunning, j.now().UnixNano(),
	); err != nil {
		return "", fmt.Errorf("写入批次失败: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO moves (batch_id, seq, from_path, to_path) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()
	for seq, m := range moves {
		if _, err := stmt.Exec(id, seq, m.From, m.To); err != nil {
			return "", fmt.Errorf("写入移动计划失败: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// MarkMoved 标记第 seq 个移动已完成
func (j *Journal) MarkMoved(batchID string, seq int) error {
	res, err := j.db.Exec(`UPDATE moves SET moved = 1 WHERE batch_id = ? AND seq = ?`, batchID, seq)
	if err != nil {
		return err
	}
	return requireRow(res, batchID)
}

// FinishBatch 以给定状态结束批次
func (j *Journal) FinishBatch(batchID, status string) error {
	res, err := j.db.Exec(`UPDATE batches SET status = ?, finished_at = ? WHERE batch_id = ?`,
		status, j.now().UnixNano(), batchID)
	if err != nil {
		return err
	}
	return requireRow(res, batchID)
}

const batchQuery = `
	SELECT b.batch_id, b.kind, b.source, b.target, b.status, b.started_at, b.finished_at,
		COUNT(m.seq), COALESCE(SUM(m.moved), 0)
	FROM batches b
	LEFT JOIN moves m ON m.batch_id = b.batch_id`

// Recent 按开始时间倒序返回最近的批次，limit <= 0 时返回全部
func (j *Journal) Recent(limit int) ([]Batch, error) {
	query := batchQuery + ` GROUP BY b.batch_id ORDER BY b.started_at DESC, b.rowid DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return j.queryBatches(query, args...)
}

// Incomplete 返回没有成功结束的批次（被中断或失败），按开始时间排序
func (j *Journal) Incomplete() ([]Batch, error) {
	return j.queryBatches(batchQuery+` WHERE b.status <> ? GROUP BY b.batch_id ORDER BY b.started_at, b.rowid`,
		dataset.StatusDone)
}

// Get 按 ID 查询批次
func (j *Journal) Get(batchID string) (*Batch, error) {
	batches, err := j.queryBatches(batchQuery+` WHERE b.batch_id = ? GROUP BY b.batch_id`, batchID)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBatch, batchID)
	}
	return &batches[0], nil
}

// Moves 按序号返回批次中的所有移动
func (j *Journal) Moves(batchID string) ([]MoveEntry, error) {
	rows, err := j.db.Query(`SELECT seq, from_path, to_path, moved FROM moves WHERE batch_id = ? ORDER BY seq`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MoveEntry
	for rows.Next() {
		var m MoveEntry
		var moved int
		if err := rows.Scan(&m.Seq, &m.From, &m.To, &moved); err != nil {
			return nil, err
		}
		m.Moved = moved != 0
		out = append(out, m)
	}
	return out, rows.Err()
}

func (j *Journal) queryBatches(query string, args ...interface{}) ([]Batch, error) {
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Batch
	for rows.Next() {
		var b Batch
		var started int64
		var finished sql.NullInt64
		if err := rows.Scan(&b.ID, &b.Kind, &b.Source, &b.Target, &b.Status, &started, &finished, &b.Total, &b.Moved); err != nil {
			return nil, err
		}
		b.StartedAt = time.Unix(0, started)
		if finished.Valid {
			b.FinishedAt = time.Unix(0, finished.Int64)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func requireRow(res sql.Result, batchID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownBatch, batchID)
	}
	return nil
}
