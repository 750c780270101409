package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/littlewanderers/frontdesk/internal/app/api/server"
	"github.com/littlewanderers/frontdesk/internal/app/feed"
	"github.com/littlewanderers/frontdesk/internal/app/service/checkin"
	"github.com/littlewanderers/frontdesk/internal/app/service/checkout"
	"github.com/littlewanderers/frontdesk/internal/app/service/household"
	"github.com/littlewanderers/frontdesk/internal/app/service/membership"
	notificationhandler "github.com/littlewanderers/frontdesk/internal/app/service/notification_handler"
	notificationlog "github.com/littlewanderers/frontdesk/internal/app/service/notification_log"
	"github.com/littlewanderers/frontdesk/internal/app/service/pricing"
	"github.com/littlewanderers/frontdesk/internal/app/service/statistics"
	"github.com/littlewanderers/frontdesk/internal/app/service/visit"
	"github.com/littlewanderers/frontdesk/internal/platform/db"
	"github.com/littlewanderers/frontdesk/internal/platform/square"
	"github.com/littlewanderers/frontdesk/internal/repository"
	"github.com/littlewanderers/frontdesk/pkg/config"
	"github.com/littlewanderers/frontdesk/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	repository.Module,
	square.Module,
	feed.Module,
	pricing.Module,
	membership.Module,
	household.Module,
	checkin.Module,
	visit.Module,
	checkout.Module,
	notificationlog.Module,
	notificationhandler.Module,
	statistics.Module,
	server.Module,
)
