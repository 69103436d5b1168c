package notification

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"petmemorial/internal/pkg/worker"
)

type SystemKind string

const (
	SystemMaintenance SystemKind = "system_maintenance"
	ServiceUpdate     SystemKind = "service_update"
	PolicyUpdate      SystemKind = "policy_update"
)

var systemTitles = map[SystemKind]string{
	SystemMaintenance: "Scheduled Maintenance",
	ServiceUpdate:     "Service Update",
	PolicyUpdate:      "Policy Update",
}

func (k SystemKind) Valid() bool {
	_, ok := systemTitles[k]
	return ok
}

// SystemNotice is a broadcast. Empty UserIDs targets every active user.
type SystemNotice struct {
	Title   string  `json:"title"`
	Message string  `json:"message"`
	Link    string  `json:"link,omitempty"`
	UserIDs []int64 `json:"user_ids,omitempty"`
}

// BroadcastResult counts how a system broadcast went.
type BroadcastResult struct {
	Targeted  int `json:"targeted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// CreateSystemNotification creates one notification per target user. Every target
// is attempted; the call fails only when none of them succeeded.
func (s *Service) CreateSystemNotification(ctx context.Context, kind SystemKind, notice SystemNotice) (BroadcastResult, error) {
	title, ok := systemTitles[kind]
	if !ok {
		return BroadcastResult{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if t := strings.TrimSpace(notice.Title); t != "" {
		title = t
	}

	severity, policy := SeverityInfo, EmailOff
	if kind == SystemMaintenance {
		severity, policy = SeverityWarning, EmailOn
	}

	targets := notice.UserIDs
	if len(targets) == 0 {
		ids, err := s.recipients.ActiveUserIDs(ctx)
		if err != nil {
			return BroadcastResult{}, err
		}
		targets = ids
	}

	res := BroadcastResult{Targeted: len(targets)}
	if len(targets) == 0 {
		return res, ErrNoRecipients
	}

	tasks := make([]worker.Task, len(targets))
	for i, userID := range targets {
		userID := userID
		tasks[i] = func(ctx context.Context) error {
			_, err := s.CreateNotification(ctx, Request{
				NewNotification: NewNotification{
					UserID:  userID,
					Title:   title,
					Message: notice.Message,
					Type:    severity,
					Link:    notice.Link,
				},
				Email: policy,
			})
			return err
		}
	}

	errs := s.pool.Settle(ctx, tasks)
	res.Succeeded = worker.CountSucceeded(errs)
	res.Failed = res.Targeted - res.Succeeded

	var firstErr error
	for i, err := range errs {
		if err == nil {
			continue
		}
		if firstErr == nil {
			firstErr = err
		}
		s.log.Warn("system notification failed",
			zap.String("kind", string(kind)),
			zap.Int64("user_id", targets[i]),
			zap.Error(err),
		)
	}

	if res.Succeeded == 0 {
		return res, fmt.Errorf("%w: %v", ErrNoRecipients, firstErr)
	}
	return res, nil
}
