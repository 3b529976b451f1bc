package main

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/gestaolivre/api-financeiro/internal/auth"
	"github.com/gestaolivre/api-financeiro/internal/cartao"
	"github.com/gestaolivre/api-financeiro/internal/centrocusto"
	"github.com/gestaolivre/api-financeiro/internal/conta"
	"github.com/gestaolivre/api-financeiro/internal/fluxocaixa"
	"github.com/gestaolivre/api-financeiro/internal/historico"
	"github.com/gestaolivre/api-financeiro/internal/parcelamento"
	"github.com/gestaolivre/api-financeiro/internal/prolabore"
	"github.com/gestaolivre/api-financeiro/internal/relatorio"
	"github.com/gestaolivre/api-financeiro/internal/usuario"
	"github.com/gestaolivre/api-financeiro/internal/utils/db"
)

func main() {
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	database, err := db.GetDB()
	if err != nil {
		logger.WithError(err).Fatal("erro ao conectar no banco")
	}

	// AutoMigrate para todos os modelos
	if err := conta.Migrate(database); err != nil {
		logger.WithError(err).Fatal("erro no AutoMigrate de contas")
	}
	if err := centrocusto.Migrate(database); err != nil {
		logger.WithError(err).Fatal("erro no AutoMigrate de centros de custo")
	}
	if err := fluxocaixa.Migrate(database); err != nil {
		logger.WithError(err).Fatal("erro no AutoMigrate do fluxo de caixa")
	}
	if err := cartao.Migrate(database); err != nil {
		logger.WithError(err).Fatal("erro no AutoMigrate de cartões")
	}
	if err := historico.Migrate(database); err != nil {
		logger.WithError(err).Fatal("erro no AutoMigrate do histórico")
	}
	if err := usuario.Migrate(database); err != nil {
		logger.WithError(err).Fatal("erro no AutoMigrate de usuários")
	}

	// Repositórios
	contaRepo := conta.NewRepository(database)
	centroRepo := centrocusto.NewRepository(database)
	fluxoRepo := fluxocaixa.NewRepository(database)
	cartaoRepo := cartao.NewRepository(database)
	historicoRepo := historico.NewRepository(database)
	usuarioRepo := usuario.NewRepository(database)
	relatorioRepo := relatorio.NewRepository(database)
	prolaboreSvc := prolabore.NewService(database, logger)

	// Motor de parcelamento
	engine := parcelamento.NewService(
		contaRepo, centroRepo, fluxoRepo, historicoRepo, cartaoRepo, prolaboreSvc, logger)

	// Handlers
	authHandler := auth.NewHandler(usuarioRepo)
	contaHandler := conta.NewHandler(contaRepo, centroRepo, fluxoRepo, logger)
	parcelamentoHandler := parcelamento.NewHandler(engine, historicoRepo)
	cartaoHandler := cartao.NewHandler(cartaoRepo)
	relatorioHandler := relatorio.NewHandler(relatorioRepo)

	// Router
	r := mux.NewRouter()
	r.HandleFunc("/login", authHandler.Login).Methods("POST")

	api := r.NewRoute().Subrouter()
	api.Use(auth.MiddlewareAutenticacao)

	// Rotas de contas
	api.HandleFunc("/contas", contaHandler.Criar).Methods("POST")
	api.HandleFunc("/contas", contaHandler.Listar).Methods("GET")
	api.HandleFunc("/contas/{id}", contaHandler.BuscarPorID).Methods("GET")
	api.HandleFunc("/contas/{id}", contaHandler.Atualizar).Methods("PUT")
	api.HandleFunc("/contas/{id}", contaHandler.Deletar).Methods("DELETE")

	// Rotas de parcelamento
	api.HandleFunc("/parcelamentos", parcelamentoHandler.Criar).Methods("POST")
	api.HandleFunc("/parcelamentos/{id}", parcelamentoHandler.Atualizar).Methods("PUT")
	api.HandleFunc("/parcelamentos/{id}", parcelamentoHandler.Excluir).Methods("DELETE")
	api.HandleFunc("/parcelamentos/{id}/historico", parcelamentoHandler.ListarHistorico).Methods("GET")

	// Rotas de cartões e relatórios
	api.HandleFunc("/cartoes/{id}/recalcular-fatura", cartaoHandler.RecalcularFatura).Methods("POST")
	api.HandleFunc("/relatorios/dre", relatorioHandler.DRE).Methods("GET")
	api.HandleFunc("/relatorios/balancete", relatorioHandler.Balancete).Methods("GET")

	porta := os.Getenv("PORT")
	if porta == "" {
		porta = "8080"
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)

	logger.WithField("porta", porta).Info("servidor iniciado")
	if err := http.ListenAndServe(":"+porta, handler); err != nil {
		logger.WithError(err).Fatal("servidor encerrado")
	}
}
