package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const (
	defaultBatchSize     = 10
	defaultFlushInterval = time.Minute
	logFilePrefix        = "contact_audit_"
	logFileDate          = "2006-01-02"
)

// ContactAuditor appends contact audit entries to one JSON-lines file per
// day. Entries are buffered until the batch fills or the flush interval
// passes, and Close writes whatever is left.
type ContactAuditor struct {
	logDir     string
	now        func() time.Time
	batchSize  int
	interval   time.Duration
	batchMu    sync.Mutex
	batchLogs  []AuditLog
	fileMu     sync.Mutex
	flushTimer *time.Timer
	seq        uint64
}

// NewContactAuditor creates an auditor writing into logDir.
func NewContactAuditor(logDir string) (*ContactAuditor, error) {
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	auditor := &ContactAuditor{
		logDir:    logDir,
		now:       time.Now,
		batchSize: defaultBatchSize,
		interval:  defaultFlushInterval,
		batchLogs: make([]AuditLog, 0, defaultBatchSize),
	}

	auditor.flushTimer = time.AfterFunc(auditor.interval, func() {
		_ = auditor.Flush()
	})

	return auditor, nil
}

// LogFile returns the path today's entries are written to.
func (a *ContactAuditor) LogFile() string {
	return a.fileFor(a.now())
}

func (a *ContactAuditor) fileFor(t time.Time) string {
	return filepath.Join(a.logDir, logFilePrefix+t.Format(logFileDate)+".log")
}

// LogContactAction records a create or delete, or any action without field
// changes.
func (a *ContactAuditor) LogContactAction(action AuditAction, contactID string, details map[string]interface{}) error {
	return a.enqueue(AuditLog{
		ContactID: contactID,
		Action:    action,
		Details:   details,
	})
}

// LogContactChange records an update with its field changes.
func (a *ContactAuditor) LogContactChange(contactID string, changes map[string]Change) error {
	if len(changes) == 0 {
		return nil
	}

	return a.enqueue(AuditLog{
		ContactID: contactID,
		Action:    AuditActionUpdate,
		Changes:   changes,
	})
}

func (a *ContactAuditor) enqueue(log AuditLog) error {
	a.batchMu.Lock()
	a.seq++
	log.Timestamp = a.now()
	log.ID = fmt.Sprintf("audit_%s_%s_%d", log.ContactID, log.Timestamp.Format("20060102150405"), a.seq)
	a.batchLogs = append(a.batchLogs, log)
	full := len(a.batchLogs) >= a.batchSize
	a.batchMu.Unlock()

	if full {
		return a.Flush()
	}
	return nil
}

// Flush writes all pending entries.
func (a *ContactAuditor) Flush() error {
	a.batchMu.Lock()
	if len(a.batchLogs) == 0 {
		a.batchMu.Unlock()
		return nil
	}

	if a.flushTimer != nil {
		a.flushTimer.Reset(a.interval)
	}

	logsToFlush := make([]AuditLog, len(a.batchLogs))
	copy(logsToFlush, a.batchLogs)
	a.batchLogs = a.batchLogs[:0]
	a.batchMu.Unlock()

	a.fileMu.Lock()
	defer a.fileMu.Unlock()

	// An entry goes to the file of the day it was recorded.
	byFile := make(map[string][]AuditLog)
	var order []string
	for _, log := range logsToFlush {
		path := a.fileFor(log.Timestamp)
		if _, ok := byFile[path]; !ok {
			order = append(order, path)
		}
		byFile[path] = append(byFile[path], log)
	}

	for _, path := range order {
		if err := appendLogs(path, byFile[path]); err != nil {
			return err
		}
	}
	return nil
}

func appendLogs(path string, logs []AuditLog) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log file: %w", err)
	}
	defer file.Close()

	for _, log := range logs {
		logJSON, err := json.Marshal(log)
		if err != nil {
			return fmt.Errorf("failed to marshal audit log: %w", err)
		}

		if _, err := file.Write(append(logJSON, '\n')); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
	}

	return nil
}

// GetContactHistory returns every entry recorded for contactID across all
// daily files, oldest first.
func (a *ContactAuditor) GetContactHistory(contactID string) ([]AuditLog, error) {
	if err := a.Flush(); err != nil {
		return nil, err
	}

	a.fileMu.Lock()
	defer a.fileMu.Unlock()

	paths, err := filepath.Glob(filepath.Join(a.logDir, logFilePrefix+"*.log"))
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log files: %w", err)
	}
	// the date format sorts chronologically
	sort.Strings(paths)

	var logs []AuditLog
	for _, path := range paths {
		entries, err := readLogs(path, contactID)
		if err != nil {
			return nil, err
		}
		logs = append(logs, entries...)
	}

	return logs, nil
}

// readLogs stops at the first undecodable line, which is where a partial
// write would leave the file.
func readLogs(path, contactID string) ([]AuditLog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}
	defer file.Close()

	var logs []AuditLog
	decoder := json.NewDecoder(file)
	for {
		var log AuditLog
		if err := decoder.Decode(&log); err != nil {
			break
		}

		if log.ContactID == contactID {
			logs = append(logs, log)
		}
	}
	return logs, nil
}

// Close stops the flush timer and writes pending entries.
func (a *ContactAuditor) Close() error {
	if a.flushTimer != nil {
		a.flushTimer.Stop()
	}
	return a.Flush()
}
