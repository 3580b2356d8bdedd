package handler

import (
	"civicsolve/internal/domain/repository"
	"civicsolve/internal/infrastructure/websocket"
	"civicsolve/internal/usecase"
)

var (
	complaintHandler  *ComplaintHandler
	userHandler       *UserHandler
	departmentHandler *DepartmentHandler
	mediaHandler      *MediaHandler
	assistantHandler  *AssistantHandler
	healthHandler     *HealthHandler
	webSocketHandler  *WebSocketHandler
)

func Setup(
	complaintUseCase *usecase.ComplaintUseCase,
	lifecycleUseCase *usecase.LifecycleUseCase,
	statsUseCase *usecase.StatsUseCase,
	userUseCase *usecase.UserUseCase,
	departmentUseCase *usecase.DepartmentUseCase,
	mediaUseCase *usecase.MediaUseCase,
	complaintRepo repository.ComplaintRepository,
	wsManager *websocket.Manager,
) {
	complaintHandler = NewComplaintHandler(complaintUseCase, lifecycleUseCase, statsUseCase)
	userHandler = NewUserHandler(userUseCase)
	departmentHandler = NewDepartmentHandler(departmentUseCase)
	mediaHandler = NewMediaHandler(mediaUseCase)
	assistantHandler = NewAssistantHandler()
	healthHandler = NewHealthHandler(complaintRepo)
	webSocketHandler = NewWebSocketHandler(wsManager)
}

func GetComplaintHandler() *ComplaintHandler {
	return complaintHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetDepartmentHandler() *DepartmentHandler {
	return departmentHandler
}

func GetMediaHandler() *MediaHandler {
	return mediaHandler
}

func GetAssistantHandler() *AssistantHandler {
	return assistantHandler
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func GetWebSocketHandler() *WebSocketHandler {
	return webSocketHandler
}
