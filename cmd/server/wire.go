// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"educycle_backend/internal/app"
	"educycle_backend/internal/auth"
	"educycle_backend/internal/book"
	"educycle_backend/internal/chat"
	"educycle_backend/internal/config"
	"educycle_backend/internal/credits"
	"educycle_backend/internal/distribution"
	"educycle_backend/internal/feedback"
	"educycle_backend/internal/filestorage"
	"educycle_backend/internal/firebase"
	"educycle_backend/internal/impact"
	"educycle_backend/internal/jobs"
	"educycle_backend/internal/location"
	"educycle_backend/internal/ngo"
	"educycle_backend/internal/note"
	"educycle_backend/internal/notification"
	platformElasticsearch "educycle_backend/internal/platform/elasticsearch"
	"educycle_backend/internal/platform/logger"
	"educycle_backend/internal/request"
	"educycle_backend/internal/shared"
	"educycle_backend/internal/user"

	"github.com/google/wire"
)

var platformSet = wire.NewSet(
	logger.New,
	provideDatabase,
	firebase.NewFirebaseService,
	platformElasticsearch.NewClient,
	filestorage.New,
	location.NewNominatimGeocoder,
	wire.Bind(new(shared.Geocoder), new(*location.NominatimGeocoder)),
)

var userSet = wire.NewSet(
	user.NewGORMRepository,
	user.NewService,
	user.NewHandler,
	wire.Bind(new(user.Service), new(*user.ServiceImplementation)),
	wire.Bind(new(shared.UserService), new(*user.ServiceImplementation)),
	wire.Bind(new(auth.Accounts), new(*user.ServiceImplementation)),
	wire.Bind(new(auth.AccountLookup), new(*user.ServiceImplementation)),
	wire.Bind(new(location.Candidates), new(*user.ServiceImplementation)),
	wire.Bind(new(feedback.Reputations), new(*user.ServiceImplementation)),

	credits.NewGORMRepository,
	provideCreditsService,
	credits.NewHandler,
	wire.Bind(new(credits.Service), new(*credits.ServiceImplementation)),
	wire.Bind(new(shared.CreditAwarder), new(*credits.ServiceImplementation)),

	notification.NewGORMRepository,
	notification.NewService,
	notification.NewHandler,
	wire.Bind(new(notification.Service), new(*notification.ServiceImplementation)),
	wire.Bind(new(shared.Notifier), new(*notification.ServiceImplementation)),
)

var authSet = wire.NewSet(
	auth.NewMailer,
	auth.NewOTPRepository,
	auth.NewOTPService,
	auth.NewIdentityProvider,
	auth.NewService,
	auth.NewHandler,
)

var exchangeSet = wire.NewSet(
	book.NewGORMRepository,
	book.NewService,
	book.NewHandler,
	wire.Bind(new(book.Service), new(*book.ServiceImplementation)),
	wire.Bind(new(request.Books), new(*book.ServiceImplementation)),
	wire.Bind(new(impact.Books), new(*book.ServiceImplementation)),

	chat.NewGORMRepository,
	chat.NewService,
	chat.NewHandler,
	wire.Bind(new(chat.Service), new(*chat.ServiceImplementation)),
	wire.Bind(new(request.Chats), new(*chat.ServiceImplementation)),

	request.NewGORMRepository,
	request.NewService,
	request.NewHandler,
	wire.Bind(new(request.Service), new(*request.ServiceImplementation)),
	wire.Bind(new(feedback.Requests), new(*request.ServiceImplementation)),
	wire.Bind(new(impact.Requests), new(*request.ServiceImplementation)),

	feedback.NewGORMRepository,
	feedback.NewService,
	feedback.NewHandler,
	wire.Bind(new(feedback.Service), new(*feedback.ServiceImplementation)),

	impact.NewService,
	impact.NewHandler,
	wire.Bind(new(impact.Service), new(*impact.ServiceImplementation)),
)

var communitySet = wire.NewSet(
	note.NewGORMRepository,
	note.NewService,
	note.NewHandler,
	wire.Bind(new(note.Service), new(*note.ServiceImplementation)),

	ngo.NewGORMRepository,
	ngo.NewService,
	ngo.NewHandler,
	wire.Bind(new(ngo.Service), new(*ngo.ServiceImplementation)),

	distribution.NewGORMRepository,
	distribution.NewService,
	distribution.NewHandler,
	wire.Bind(new(distribution.Service), new(*distribution.ServiceImplementation)),

	location.NewService,
	location.NewHandler,
	wire.Bind(new(location.Service), new(*location.ServiceImplementation)),
)

// initializeApplication is the main Wire injector.
func initializeApplication(cfg *config.Config) (*application, func(), error) {
	wire.Build(
		platformSet,
		userSet,
		authSet,
		exchangeSet,
		communitySet,
		jobs.NewMaintenanceJobs,
		wire.Bind(new(jobs.OTPPurger), new(*auth.OTPService)),
		wire.Bind(new(jobs.BulkReconciler), new(*ngo.ServiceImplementation)),
		wire.Struct(new(app.Handlers), "*"),
		app.NewServer,
		wire.Struct(new(application), "*"),
	)
	return nil, nil, nil
}
