package provisioning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"uoauth/adapters/provision"
	"uoauth/metrics"
	"uoauth/models"
)

const (
	PlatformDiscord   = "discord"
	PlatformTeamSpeak = "teamspeak"
)

// IGroupSource 取得論壇會員目前的群組
type IGroupSource interface {
	MemberGroups(ctx context.Context, memberID string) ([]string, error)
}

// ITeamSpeak 定義了 TeamSpeak 伺服器群組的操作介面
type ITeamSpeak interface {
	Assign(ctx context.Context, groupIDs []uint64, databaseID uint64) error
	Revoke(ctx context.Context, databaseID uint64) error
}

// PlatformResult 是單一平台的執行結果
type PlatformResult struct {
	Revoked  bool
	Assigned []string
	Err      error
}

// Report 是一次角色設定的結果，各平台的錯誤互不影響
type Report struct {
	Groups    []string
	Discord   PlatformResult
	TeamSpeak PlatformResult
}

// Err 合併各平台的錯誤
func (r Report) Err() error {
	var errs []error
	if r.Discord.Err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", PlatformDiscord, r.Discord.Err))
	}
	if r.TeamSpeak.Err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", PlatformTeamSpeak, r.TeamSpeak.Err))
	}
	return errors.Join(errs...)
}

type Dispatcher struct {
	groupMap  GroupMap
	groups    IGroupSource
	discord   provision.IProvisioner
	teamspeak ITeamSpeak
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

type DispatcherOption func(*Dispatcher)

func WithGroupMap(m GroupMap) DispatcherOption {
	return func(d *Dispatcher) {
		d.groupMap = m
	}
}

func WithMetrics(m *metrics.Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func NewDispatcher(groups IGroupSource, discord provision.IProvisioner, teamspeak ITeamSpeak, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		groupMap:  DefaultGroupMap(),
		groups:    groups,
		discord:   discord,
		teamspeak: teamspeak,
		metrics:   metrics.Nop(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(slog.String("caller", "provisioning.Dispatcher"))
	return d
}

// GroupMap 回傳使用中的群組對應表
func (d *Dispatcher) GroupMap() GroupMap {
	return d.groupMap
}

// Provision 套用 record 的論壇群組到各平台。
// prior 不為 nil 時先移除舊身份在該平台的所有角色，再設定新角色。
// Discord 與 TeamSpeak 同時執行，任一平台失敗不影響另一平台，錯誤只記錄在 Report 中。
func (d *Dispatcher) Provision(ctx context.Context, record *models.AuthenticationRecord, prior *models.AuthenticationRecord) Report {
	logger := d.logger.With(
		slog.String("attempt_id", record.AttemptID),
		slog.String("secondary_account_id", record.SecondaryAccountID),
	)

	var report Report
	groups, groupsErr := d.groups.MemberGroups(ctx, record.SecondaryAccountID)
	if groupsErr != nil {
		logger.Error("fail to fetch member groups", slog.Any("error", groupsErr))
		groupsErr = fmt.Errorf("fail to fetch member groups, err=%w", groupsErr)
	}
	report.Groups = groups

	var g errgroup.Group
	g.Go(func() error {
		report.Discord = d.provisionDiscord(ctx, record, prior, groups, groupsErr)
		return report.Discord.Err
	})
	g.Go(func() error {
		report.TeamSpeak = d.provisionTeamSpeak(ctx, record, prior, groups, groupsErr)
		return report.TeamSpeak.Err
	})
	_ = g.Wait()

	d.observe(PlatformDiscord, report.Discord)
	d.observe(PlatformTeamSpeak, report.TeamSpeak)
	if err := report.Err(); err != nil {
		logger.Warn("provisioning finished with errors", slog.Any("error", err))
	} else {
		logger.Info("provisioning finished",
			slog.Any("discord", report.Discord.Assigned),
			slog.Any("teamspeak", report.TeamSpeak.Assigned),
		)
	}
	return report
}

func (d *Dispatcher) observe(platform string, result PlatformResult) {
	outcome := "ok"
	if result.Err != nil {
		outcome = "error"
	}
	d.metrics.Provisions.WithLabelValues(platform, outcome).Inc()
}

func (d *Dispatcher) provisionDiscord(
	ctx context.Context,
	record, prior *models.AuthenticationRecord,
	groups []string,
	groupsErr error,
) PlatformResult {
	var result PlatformResult
	var errs []error

	if prior != nil && prior.PrimaryAccountID != "" {
		err := d.discord.Provision(ctx, provision.Request{
			ID:     prior.PrimaryAccountID,
			Revoke: []string{provision.RevokeAll},
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("fail to revoke roles, err=%w", err))
		} else {
			result.Revoked = true
		}
	}

	if groupsErr != nil {
		errs = append(errs, groupsErr)
	} else if roles := d.groupMap.DiscordRoles(groups); len(roles) > 0 {
		err := d.discord.Provision(ctx, provision.Request{ID: record.PrimaryAccountID, Assign: roles})
		if err != nil {
			errs = append(errs, fmt.Errorf("fail to assign roles, err=%w", err))
		} else {
			result.Assigned = roles
		}
	}
	result.Err = errors.Join(errs...)
	return result
}

func (d *Dispatcher) provisionTeamSpeak(
	ctx context.Context,
	record, prior *models.AuthenticationRecord,
	groups []string,
	groupsErr error,
) PlatformResult {
	var result PlatformResult
	var errs []error

	if prior != nil && prior.TertiaryDatabaseID != 0 {
		if err := d.teamspeak.Revoke(ctx, prior.TertiaryDatabaseID); err != nil {
			errs = append(errs, fmt.Errorf("fail to revoke server groups, err=%w", err))
		} else {
			result.Revoked = true
		}
	}

	if groupsErr != nil {
		errs = append(errs, groupsErr)
	} else if ids := d.groupMap.TeamSpeakGroups(groups); len(ids) > 0 {
		if err := d.teamspeak.Assign(ctx, ids, record.TertiaryDatabaseID); err != nil {
			errs = append(errs, fmt.Errorf("fail to assign server groups, err=%w", err))
		} else {
			for _, id := range ids {
				result.Assigned = append(result.Assigned, fmt.Sprint(id))
			}
		}
	}
	result.Err = errors.Join(errs...)
	return result
}
