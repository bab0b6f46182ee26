package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/taherx7/Medi-connect/internal/delivery/http/handler"
	"github.com/taherx7/Medi-connect/internal/delivery/http/middleware"
	"github.com/taherx7/Medi-connect/internal/infrastructure/metrics"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	slotHandler         *handler.SlotHandler
	bookingHandler      *handler.BookingHandler
	patientHandler      *handler.PatientHandler
	doctorHandler       *handler.DoctorHandler
	directoryHandler    *handler.DirectoryHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	rateLimitMiddleware *middleware.RateLimitMiddleware
	metrics             *metrics.Metrics
	metricsPath         string
}

func NewRouter(
	authHandler *handler.AuthHandler,
	slotHandler *handler.SlotHandler,
	bookingHandler *handler.BookingHandler,
	patientHandler *handler.PatientHandler,
	doctorHandler *handler.DoctorHandler,
	directoryHandler *handler.DirectoryHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	m *metrics.Metrics,
	metricsPath string,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		slotHandler:         slotHandler,
		bookingHandler:      bookingHandler,
		patientHandler:      patientHandler,
		doctorHandler:       doctorHandler,
		directoryHandler:    directoryHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
		metrics:             m,
		metricsPath:         metricsPath,
	}
}

func (r *Router) Setup() *mux.Router {
	// Preflight requests must match a route for the CORS middleware to run
	r.router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	if r.metrics != nil && r.metricsPath != "" {
		r.router.Handle(r.metricsPath, r.metrics.Handler()).Methods(http.MethodGet)
	}

	// Browser surfaces kept on their original paths
	r.router.HandleFunc("/patient/doctor/{id}/slots", r.slotHandler.GetPageSlots).Methods(http.MethodGet)
	r.router.HandleFunc("/api/doctors/search", r.directoryHandler.Autocomplete).Methods(http.MethodGet)

	book := r.router.Path("/patient/book").Subrouter()
	book.Use(r.rateLimitMiddleware.Handle)
	book.Use(r.authMiddleware.OptionalAuthenticate)
	book.Methods(http.MethodPost).HandlerFunc(r.bookingHandler.Book)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.Use(r.rateLimitMiddleware.Handle)
	auth.HandleFunc("/register/patient", r.authHandler.RegisterPatient).Methods(http.MethodPost)
	auth.HandleFunc("/register/doctor", r.authHandler.RegisterDoctor).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Directory (public); search must be registered before {id}
	api.HandleFunc("/home", r.directoryHandler.Home).Methods(http.MethodGet)
	api.HandleFunc("/doctors/search", r.directoryHandler.SearchDoctors).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}/slots", r.slotHandler.GetSlots).Methods(http.MethodGet)

	// Patient routes (protected - patient only)
	patient := api.PathPrefix("/patient").Subrouter()
	patient.Use(r.authMiddleware.Authenticate)
	patient.Use(middleware.RequirePatient)
	patient.HandleFunc("/dashboard", r.patientHandler.Dashboard).Methods(http.MethodGet)
	patient.Handle("/reservations", r.rateLimitMiddleware.Handle(http.HandlerFunc(r.bookingHandler.CreateReservation))).Methods(http.MethodPost)
	patient.HandleFunc("/reservations/{id}/cancel", r.bookingHandler.CancelReservation).Methods(http.MethodPost)

	// Doctor routes (protected - doctor only)
	doctor := api.PathPrefix("/doctor").Subrouter()
	doctor.Use(r.authMiddleware.Authenticate)
	doctor.Use(middleware.RequireDoctor)
	doctor.HandleFunc("/dashboard", r.doctorHandler.Dashboard).Methods(http.MethodGet)
	doctor.HandleFunc("/profile", r.doctorHandler.UpdateProfile).Methods(http.MethodPut)
	doctor.HandleFunc("/blocked-slots", r.doctorHandler.ListBlockedSlots).Methods(http.MethodGet)
	doctor.HandleFunc("/blocked-slots", r.doctorHandler.BlockTime).Methods(http.MethodPost)
	doctor.HandleFunc("/blocked-slots/{id}", r.doctorHandler.DeleteBlockedSlot).Methods(http.MethodDelete)
	doctor.HandleFunc("/account", r.doctorHandler.DeleteAccount).Methods(http.MethodDelete)
	doctor.HandleFunc("/activity", r.auditLogHandler.GetMyActivity).Methods(http.MethodGet)

	// Add CORS and metrics middleware
	r.router.Use(r.corsMiddleware.Handle)
	if r.metrics != nil {
		r.router.Use(middleware.NewMetricsMiddleware(r.metrics).Handle)
	}

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
