package main

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	awsclient "qris-workers/internal/common/aws"
	"qris-workers/internal/common/camunda"
	"qris-workers/internal/common/config"
	"qris-workers/internal/common/database"
	"qris-workers/internal/common/logger"
	"qris-workers/internal/common/observability"
	"qris-workers/internal/common/telegram"
	"qris-workers/internal/qris"
	"qris-workers/pkg/registry"

	npi "qris-workers/internal/workers/communication/notify-payment-instruction"
	ipc "qris-workers/internal/workers/data-access/index-payment-code"
	gq "qris-workers/internal/workers/payment/generate-qris"
	ups "qris-workers/internal/workers/payment/update-payment-status"
	vq "qris-workers/internal/workers/payment/verify-qris"
)

type dependencies struct {
	cfg       *config.Config
	zeebe     *camunda.Client
	generator *qris.Generator
	pg        *database.PostgresClient
	es        *database.ElasticsearchClient
	redis     *database.RedisClient
	registry  *registry.ActivityRegistry
	obs       *observability.Observability
	log       logger.Logger
	zapLog    *zap.Logger
}

// workerTimeout prefers the per-worker config and falls back to def.
func workerTimeout(cfg *config.Config, taskType string, def time.Duration) time.Duration {
	if w, ok := cfg.Workers[taskType]; ok && w.Timeout > 0 {
		return config.GetDuration(w.Timeout)
	}
	return def
}

func startWorkers(ctx context.Context, client zbc.Client, d *dependencies) ([]*camunda.CamundaWorker, error) {
	cfg := d.cfg
	var workers []*camunda.CamundaWorker

	start := func(taskType string, handler camunda.HandlerFunc) {
		if !config.IsWorkerEnabled(cfg, taskType) {
			d.zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		if d.registry != nil {
			if _, ok := d.registry.Find(taskType); !ok {
				d.zapLog.Warn("task type missing from activity registry", zap.String("taskType", taskType))
			}
		}

		wcfg := config.GetWorkerConfig(cfg, taskType)
		workers = append(workers, camunda.NewWorker(client, taskType, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
		}, instrument(d.obs, taskType, handler), d.zapLog))
	}

	// --- Payment Workers ---
	gqCfg := gq.LoadConfig()
	gqCfg.Timeout = workerTimeout(cfg, gq.TaskType, gqCfg.Timeout)
	gqCfg.CacheTTL = time.Duration(cfg.QRIS.CacheTTL) * time.Second
	gqCfg.Currency, gqCfg.Locale = cfg.QRIS.Currency, cfg.QRIS.Locale
	generate, err := gq.NewHandler(gqCfg, d.generator, d.pg.DB, d.redis.Client, d.log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", gq.TaskType, err)
	}
	if d.registry != nil {
		if schema := d.registry.InputSchema(gq.TaskType); schema != nil {
			if err := generate.UseInputSchema(schema); err != nil {
				d.zapLog.Warn("registry input schema rejected, keeping built-in schema",
					zap.String("taskType", gq.TaskType), zap.Error(err))
			}
		}
	}
	start(gq.TaskType, generate.Handle)

	vqCfg := vq.LoadConfig()
	vqCfg.Timeout = workerTimeout(cfg, vq.TaskType, vqCfg.Timeout)
	vqCfg.Currency, vqCfg.Locale = cfg.QRIS.Currency, cfg.QRIS.Locale
	verify, err := vq.NewHandler(vqCfg, d.log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", vq.TaskType, err)
	}
	start(vq.TaskType, verify.Handle)

	upsCfg := ups.LoadConfig()
	upsCfg.Timeout = workerTimeout(cfg, ups.TaskType, upsCfg.Timeout)
	upsHandler := ups.NewHandler(upsCfg, d.pg.DB, d.redis.Client, d.log)
	if d.zeebe != nil {
		upsHandler.WithPublisher(d.zeebe)
	}
	start(ups.TaskType, upsHandler.Handle)

	// --- Data Access Workers ---
	ipcCfg := ipc.LoadConfig()
	ipcCfg.Timeout = workerTimeout(cfg, ipc.TaskType, ipcCfg.Timeout)
	ipcCfg.Index = cfg.Search.PaymentIndex
	start(ipc.TaskType, ipc.NewHandler(ipcCfg, d.es.Client, d.log).Handle)

	// --- Communication Workers ---
	if config.IsWorkerEnabled(cfg, npi.TaskType) {
		notify, err := newNotifyHandler(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", npi.TaskType, err)
		}
		start(npi.TaskType, notify.Handle)
	}

	return workers, nil
}

func newNotifyHandler(ctx context.Context, d *dependencies) (*npi.Handler, error) {
	cfg := d.cfg

	npiCfg := npi.LoadConfig()
	npiCfg.Timeout = workerTimeout(cfg, npi.TaskType, npiCfg.Timeout)
	npiCfg.Currency, npiCfg.Locale = cfg.QRIS.Currency, cfg.QRIS.Locale
	npiCfg.EmailEnabled = cfg.Notifications.Email.Enabled
	npiCfg.SMSEnabled = cfg.Notifications.SMS.Enabled
	if cfg.Notifications.Email.FromEmail != "" {
		npiCfg.FromEmail = cfg.Notifications.Email.FromEmail
	}
	if cfg.Contacts.WhatsApp != "" {
		npiCfg.AdminWhatsApp = cfg.Contacts.WhatsApp
	}
	if cfg.Contacts.Telegram != "" {
		npiCfg.AdminTelegram = cfg.Contacts.Telegram
	}
	if cfg.Contacts.AdminName != "" {
		npiCfg.AdminName = cfg.Contacts.AdminName
	}
	if err := npiCfg.Validate(); err != nil {
		return nil, err
	}

	deps := npi.ServiceDependencies{Logger: d.log.WithFields(map[string]interface{}{"taskType": npi.TaskType})}

	if npiCfg.EmailEnabled || npiCfg.SMSEnabled {
		awsCfg, err := awsclient.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			d.zapLog.Warn("AWS config unavailable, email and SMS disabled", zap.Error(err))
		} else {
			if npiCfg.EmailEnabled {
				deps.Email = awsclient.NewSESClientFromConfig(awsCfg)
			}
			if npiCfg.SMSEnabled {
				deps.SMS = awsclient.NewSNSClientFromConfig(awsCfg)
			}
		}
	}

	if cfg.Telegram.Enabled() {
		deps.Telegram = telegram.NewClient(cfg.Telegram.APIBaseURL, cfg.Telegram.BotToken, cfg.Telegram.ChatID,
			config.GetDuration(cfg.Telegram.Timeout))
	} else {
		d.zapLog.Info("telegram credentials missing, admin announcements disabled")
	}

	svc, err := npi.NewService(deps, npiCfg)
	if err != nil {
		return nil, err
	}
	return npi.NewHandler(npiCfg, svc, d.log), nil
}

// jobRecorder is the slice of Observability that instrument needs.
type jobRecorder interface {
	RecordJobProcessed(ctx context.Context, taskType, status string)
	RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string)
}

// Job outcomes, named after the command the handler sent back to the broker.
const (
	outcomeCompleted   = "completed"
	outcomeFailed      = "failed"
	outcomeErrorThrown = "error_thrown"
	outcomeUnanswered  = "unanswered"
)

// outcomeClient remembers the last command a handler built for its job.
type outcomeClient struct {
	worker.JobClient
	outcome string
}

func (c *outcomeClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	c.outcome = outcomeCompleted
	return c.JobClient.NewCompleteJobCommand()
}

func (c *outcomeClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	c.outcome = outcomeFailed
	return c.JobClient.NewFailJobCommand()
}

func (c *outcomeClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	c.outcome = outcomeErrorThrown
	return c.JobClient.NewThrowErrorCommand()
}

// instrument records job counts and durations on the OpenTelemetry meter,
// labelled with the outcome the handler reported.
func instrument(rec jobRecorder, taskType string, handler camunda.HandlerFunc) camunda.HandlerFunc {
	return func(client worker.JobClient, job entities.Job) {
		oc := &outcomeClient{JobClient: client, outcome: outcomeUnanswered}
		start := time.Now()
		defer func() {
			ctx := context.Background()
			rec.RecordJobProcessed(ctx, taskType, oc.outcome)
			rec.RecordJobDuration(ctx, taskType, time.Since(start), oc.outcome)
		}()
		handler(oc, job)
	}
}
