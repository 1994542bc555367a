package main

import (
	"context"
	"time"

	specialistx "github.com/igestadev/assessor/agent/agents/specialist"
	contractx "github.com/igestadev/assessor/agent/contract"
	handlerx "github.com/igestadev/assessor/agent/handler"
	llmx "github.com/igestadev/assessor/agent/llm"
	statex "github.com/igestadev/assessor/agent/state"
	toolx "github.com/igestadev/assessor/agent/tool"
	configx "github.com/igestadev/assessor/pkg/config"
	_ "github.com/igestadev/assessor/pkg/logger/autoload"
	mongox "github.com/igestadev/assessor/pkg/mongox"
	openrouterx "github.com/igestadev/assessor/pkg/openrouter"
	postgresx "github.com/igestadev/assessor/pkg/postgres"
	registrosx "github.com/igestadev/assessor/repo/registros"
	transacoesx "github.com/igestadev/assessor/repo/transacoes"
	serverx "github.com/igestadev/assessor/server"
	"github.com/rs/zerolog/log"
)

type AppConfig struct {
	Addr                string `envconfig:"ADDR" split_words:"true" default:":8080"`
	Timezone            string `envconfig:"TIMEZONE" split_words:"true" default:"America/Sao_Paulo"`
	RegistrosCollection string `envconfig:"REGISTROS_COLLECTION" split_words:"true" default:"registros"`
	ChatbotCollection   string `envconfig:"CHATBOT_COLLECTION" split_words:"true" default:"chatbot"`
	MaxHistoryTurns     int    `envconfig:"MAX_HISTORY_TURNS" split_words:"true" default:"40"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("APP")

	loc, err := time.LoadLocation(appCfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", appCfg.Timezone).Msg("load timezone")
	}
	// The prompt date is resolved once per process start.
	todayLocal := time.Now().In(loc).Format("2006-01-02")

	mongoCfg := configx.MustNew[mongox.Config]("MONGO")
	mongoClient := mongox.MustNew(ctx, *mongoCfg)
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	pgCfg := configx.MustNew[postgresx.Config]("POSTGRES")
	db := postgresx.MustNew(*pgCfg)
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("postgres close")
		}
	}()

	registroStore, err := registrosx.NewStore(mongoClient.Collection(appCfg.RegistrosCollection), loc)
	if err != nil {
		log.Fatal().Err(err).Msg("create registro store")
	}
	transacaoStore, err := transacoesx.NewStore(db, loc)
	if err != nil {
		log.Fatal().Err(err).Msg("create transacao store")
	}
	gateway, err := toolx.NewGateway(registroStore, transacaoStore, loc)
	if err != nil {
		log.Fatal().Err(err).Msg("create tool gateway")
	}

	store := statex.NewMemoryStore(statex.WithMaxTurns(appCfg.MaxHistoryTurns))

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	if err := openrouterx.Verify(ctx, llmCfg.OpenRouterFor(contractx.AgentTypeRoteador)); err != nil {
		log.Warn().Err(err).Msg("openrouter preflight failed")
	}
	registry, err := specialistx.NewRegistry(ctx, *llmCfg, store, gateway, todayLocal)
	if err != nil {
		log.Fatal().Err(err).Msg("create agent registry")
	}

	turns, err := handlerx.New(registry, store)
	if err != nil {
		log.Fatal().Err(err).Msg("create turn handler")
	}

	history, err := statex.NewMongoHistory(mongoClient.Collection(appCfg.ChatbotCollection))
	if err != nil {
		log.Fatal().Err(err).Msg("create chat history")
	}

	srv, err := serverx.New(turns, history)
	if err != nil {
		log.Fatal().Err(err).Msg("create http server")
	}
	if err := srv.ListenAndServe(appCfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("http server stopped")
	}
}
