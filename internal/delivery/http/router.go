package http

import (
	"net/http"

	"medibook-backend/internal/delivery/http/handler"
	"medibook-backend/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	authHandler        *handler.AuthHandler
	patientHandler     *handler.PatientHandler
	doctorHandler      *handler.DoctorHandler
	adminHandler       *handler.AdminHandler
	appointmentHandler *handler.AppointmentHandler
	paymentHandler     *handler.PaymentHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	patientHandler *handler.PatientHandler,
	doctorHandler *handler.DoctorHandler,
	adminHandler *handler.AdminHandler,
	appointmentHandler *handler.AppointmentHandler,
	paymentHandler *handler.PaymentHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		authHandler:        authHandler,
		patientHandler:     patientHandler,
		doctorHandler:      doctorHandler,
		adminHandler:       adminHandler,
		appointmentHandler: appointmentHandler,
		paymentHandler:     paymentHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Public routes
	api.HandleFunc("/user/register", r.authHandler.RegisterPatient).Methods(http.MethodPost)
	api.HandleFunc("/user/login", r.authHandler.LoginPatient).Methods(http.MethodPost)
	api.HandleFunc("/doctor/login", r.authHandler.LoginDoctor).Methods(http.MethodPost)
	api.HandleFunc("/admin/login", r.authHandler.LoginAdmin).Methods(http.MethodPost)
	api.HandleFunc("/doctor/list", r.doctorHandler.ListPublic).Methods(http.MethodGet)

	// Auth routes
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Patient routes (protected - patient only)
	user := api.PathPrefix("/user").Subrouter()
	user.Use(r.authMiddleware.Authenticate)
	user.Use(middleware.RequirePatient)
	user.HandleFunc("/get-profile", r.patientHandler.GetProfile).Methods(http.MethodGet)
	user.HandleFunc("/update-profile", r.patientHandler.UpdateProfile).Methods(http.MethodPost)
	user.HandleFunc("/book-appointment", r.appointmentHandler.BookAppointment).Methods(http.MethodPost)
	user.HandleFunc("/appointments", r.appointmentHandler.ListForPatient).Methods(http.MethodGet)
	user.HandleFunc("/cancel-appointment", r.appointmentHandler.CancelByPatient).Methods(http.MethodPost)
	user.HandleFunc("/payment-razorpay", r.paymentHandler.CreateOrder).Methods(http.MethodPost)
	user.HandleFunc("/verify-razorpay", r.paymentHandler.Verify).Methods(http.MethodPost)

	// Doctor routes (protected - doctor only)
	doctor := api.PathPrefix("/doctor").Subrouter()
	doctor.Use(r.authMiddleware.Authenticate)
	doctor.Use(middleware.RequireDoctor)
	doctor.HandleFunc("/appointments", r.appointmentHandler.ListForDoctor).Methods(http.MethodGet)
	doctor.HandleFunc("/cancel-appointment", r.appointmentHandler.CancelByDoctor).Methods(http.MethodPost)
	doctor.HandleFunc("/complete-appointment", r.appointmentHandler.CompleteByDoctor).Methods(http.MethodPost)
	doctor.HandleFunc("/change-availability", r.doctorHandler.ChangeAvailability).Methods(http.MethodPost)
	doctor.HandleFunc("/dashboard", r.appointmentHandler.DoctorDashboard).Methods(http.MethodGet)
	doctor.HandleFunc("/profile", r.doctorHandler.GetProfile).Methods(http.MethodGet)
	doctor.HandleFunc("/update-profile", r.doctorHandler.UpdateProfile).Methods(http.MethodPost)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/add-doctor", r.adminHandler.AddDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/all-doctors", r.adminHandler.AllDoctors).Methods(http.MethodGet)
	admin.HandleFunc("/change-availability", r.adminHandler.ChangeAvailability).Methods(http.MethodPost)
	admin.HandleFunc("/appointments", r.appointmentHandler.ListAll).Methods(http.MethodGet)
	admin.HandleFunc("/cancel-appointment", r.appointmentHandler.CancelByAdmin).Methods(http.MethodPost)
	admin.HandleFunc("/dashboard", r.appointmentHandler.AdminDashboard).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
