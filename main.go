package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"task-management/microservices/tasks-service/clients"
	"task-management/microservices/tasks-service/handlers"
	"task-management/microservices/tasks-service/logging"
	"task-management/microservices/tasks-service/repositories"
	"task-management/microservices/tasks-service/services"
	"task-management/microservices/tasks-service/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Role")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func newBreaker(name string, timeout time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
}

func main() {
	logging.InitLogger()

	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Tasks Service...")
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded, relying on process environment: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer mongoClient.Disconnect(ctx)

	if err := mongoClient.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	taskRepository := repositories.NewTaskRepository(mongoClient, mongoDBName)
	if err := taskRepository.EnsureIndexes(ctx); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: Failed to create indexes: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_INDEXES_READY, Description: Using MongoDB database: %s", mongoDBName)

	httpClient := utils.NewHTTPClient()

	usersBreaker := newBreaker("UsersServiceCB", 2*time.Second)
	projectsBreaker := newBreaker("ProjectsServiceCB", 2*time.Second)
	notificationsBreaker := newBreaker("NotificationsServiceCB", 5*time.Second)

	userDirectory := clients.NewUserDirectoryClient(os.Getenv("USERS_SERVICE_URL"), httpClient, usersBreaker)
	projectDirectory := clients.NewProjectDirectoryClient(os.Getenv("PROJECTS_SERVICE_URL"), httpClient, projectsBreaker)
	notifier := clients.NewNotifierClient(os.Getenv("NOTIFICATIONS_SERVICE_URL"), httpClient, notificationsBreaker)

	taskService := services.NewTaskService(taskRepository, userDirectory, projectDirectory, notifier)
	taskHandler := handlers.NewTaskHandler(taskService)

	r := mux.NewRouter()
	r.HandleFunc("/api/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	r.HandleFunc("/api/tasks", taskHandler.GetAllTasks).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks/project/{projectId}", taskHandler.GetTasksByProject).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks/project/{projectId}/has-unfinished", taskHandler.HasUnfinishedTasks).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks/remove-user/{userId}", taskHandler.RemoveUserFromAllTasks).Methods(http.MethodPatch)
	r.HandleFunc("/api/tasks/{id}", taskHandler.GetTaskByID).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks/{id}", taskHandler.UpdateTask).Methods(http.MethodPatch)
	r.HandleFunc("/api/tasks/{id}", taskHandler.DeleteTask).Methods(http.MethodDelete)
	r.HandleFunc("/api/tasks/{id}/status", taskHandler.ChangeTaskStatus).Methods(http.MethodPatch)

	corsRouter := enableCORS(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: SERVER_PORT is not set in the environment variables.")
	}

	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, corsRouter); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
