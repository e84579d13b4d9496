package main

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/itaplanner/planner-backend/pkg/date"
	"github.com/itaplanner/planner-backend/pkg/environment"
	"github.com/itaplanner/planner-backend/pkg/executions"
	"github.com/itaplanner/planner-backend/pkg/locking"
	"github.com/itaplanner/planner-backend/pkg/logger"
	"github.com/itaplanner/planner-backend/pkg/planning"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const calendarCacheSize = 512

// application holds all long living dependencies of a command
type application struct {
	env          environment.Environment
	logger       logger.Interface
	hours        *date.BusinessHours
	repository   executions.RepositoryInterface
	calendars    *planning.CalendarProvider
	service      *planning.Service
	recalculator *planning.Recalculator

	closers []func()
}

func newLogger(ctx context.Context, env environment.Environment) (logger.Interface, func(), error) {
	if env.IsProduction() && env.GCPProject != "" {
		googleLogger, err := logger.NewGoogleLogger(ctx, env.GCPProject, "planner-backend")
		if err != nil {
			return nil, nil, err
		}
		return googleLogger, func() { _ = googleLogger.Close() }, nil
	}

	return logger.NewLogger(nil, env.Environment == environment.Dev, env.Environment == environment.Dev), func() {}, nil
}

func loadBusinessHours(env environment.Environment) (*date.BusinessHours, error) {
	cfg, err := environment.LoadCalendarConfig(env.CalendarConfig)
	if err != nil {
		return nil, err
	}

	if env.Timezone != "" {
		cfg.Timezone = env.Timezone
	}

	return cfg.ToBusinessHours()
}

func (a *application) connectMongo(ctx context.Context) (executions.RepositoryInterface, executions.VacationRepositoryInterface, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(a.env.DatabaseURL))
	if err != nil {
		return nil, nil, err
	}

	err = client.Ping(connectCtx, nil)
	if err != nil {
		return nil, nil, err
	}

	a.closers = append(a.closers, func() {
		err := client.Disconnect(context.Background())
		if err != nil {
			a.logger.Error("could not disconnect from database", err)
		}
	})

	db := client.Database(a.env.DatabaseName)
	a.logger.Info("Database connected")

	return &executions.MongoDBRepository{DB: db.Collection("executions"), Logger: a.logger},
		&executions.MongoDBVacationRepository{DB: db.Collection("vacations"), Location: a.hours.Location}, nil
}

func (a *application) connectPostgres(ctx context.Context) (executions.RepositoryInterface, executions.VacationRepositoryInterface, error) {
	cfg, err := pgxpool.ParseConfig(a.env.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	cfg.MaxConnLifetime = 5 * time.Minute
	cfg.MaxConnIdleTime = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	a.closers = append(a.closers, pool.Close)

	migrateCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	err = executions.Migrate(migrateCtx, pool)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not migrate database")
	}
	a.logger.Info("Database connected")

	return &executions.PostgresRepository{Pool: pool, Location: a.hours.Location, Logger: a.logger},
		&executions.PostgresVacationRepository{Pool: pool, Location: a.hours.Location}, nil
}

func (a *application) connectRedis(ctx context.Context) (*redis.Client, error) {
	if a.env.Redis == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.env.Redis,
		Password: a.env.RedisPassword,
	})

	err := client.Ping(ctx).Err()
	if err != nil {
		return nil, errors.Wrap(err, "could not connect to redis")
	}

	a.closers = append(a.closers, func() { _ = client.Close() })
	return client, nil
}

func newApplication(ctx context.Context, env environment.Environment) (*application, error) {
	a := &application{env: env}

	log, closeLogger, err := newLogger(ctx, env)
	if err != nil {
		return nil, err
	}
	a.logger = log
	a.closers = append(a.closers, closeLogger)

	a.hours, err = loadBusinessHours(env)
	if err != nil {
		a.close()
		return nil, err
	}

	var vacations executions.VacationRepositoryInterface
	switch env.Database {
	case environment.DatabasePostgres:
		a.repository, vacations, err = a.connectPostgres(ctx)
	default:
		a.repository, vacations, err = a.connectMongo(ctx)
	}
	if err != nil {
		a.close()
		return nil, err
	}

	redisClient, err := a.connectRedis(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	var locker locking.LockerInterface
	var cache planning.CalendarCacheInterface
	if redisClient != nil {
		locker = locking.NewLockerRedis(redisClient)
		cache = planning.NewCalendarCacheRedis(redisClient)
	} else {
		locker = locking.NewLockerMemory()
		cache, err = planning.NewCalendarCacheMemory(calendarCacheSize)
		if err != nil {
			a.close()
			return nil, err
		}
	}

	a.calendars = &planning.CalendarProvider{Base: a.hours, Vacations: vacations, Cache: cache, Logger: a.logger}
	a.service = planning.NewService(a.repository, a.calendars, a.logger)
	a.recalculator = &planning.Recalculator{Service: a.service, Locker: locker, Logger: a.logger}

	return a, nil
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
