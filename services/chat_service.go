package services

import (
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/chat"
	"chat-hub/runtime"
)

// IChatService is the transport-facing surface. Every method enqueues
// one command on the coordinator; none of them blocks on chat state.
type IChatService interface {
	Connect(id domain.ConnID, sink contract.EventSink)
	Disconnect(id domain.ConnID)
	Login(id domain.ConnID, username, avatar string)
	CreateGroup(id domain.ConnID, name, avatar string, members []string)
	SendPrivateMessage(id domain.ConnID, to, content string)
	SendGroupMessage(id domain.ConnID, group, content string)
	RequestHistory(id domain.ConnID, target string, kind chat.HistoryKind)
}

type ChatService struct {
	coordinator *runtime.Coordinator
}

func NewChatService(coordinator *runtime.Coordinator) *ChatService {
	return &ChatService{coordinator: coordinator}
}

func (s *ChatService) Connect(id domain.ConnID, sink contract.EventSink) {
	s.coordinator.Dispatch(chat.ConnectCommand{ConnID: id, Sink: sink})
}

func (s *ChatService) Disconnect(id domain.ConnID) {
	s.coordinator.Dispatch(chat.DisconnectCommand{ConnID: id})
}

func (s *ChatService) Login(id domain.ConnID, username, avatar string) {
	s.coordinator.Dispatch(chat.LoginCommand{ConnID: id, Username: username, Avatar: avatar})
}

func (s *ChatService) CreateGroup(id domain.ConnID, name, avatar string, members []string) {
	s.coordinator.Dispatch(chat.CreateGroupCommand{ConnID: id, Name: name, Avatar: avatar, Members: members})
}

func (s *ChatService) SendPrivateMessage(id domain.ConnID, to, content string) {
	s.coordinator.Dispatch(chat.PrivateMessageCommand{ConnID: id, To: to, Content: content})
}

func (s *ChatService) SendGroupMessage(id domain.ConnID, group, content string) {
	s.coordinator.Dispatch(chat.GroupMessageCommand{ConnID: id, Group: group, Content: content})
}

func (s *ChatService) RequestHistory(id domain.ConnID, target string, kind chat.HistoryKind) {
	s.coordinator.Dispatch(chat.GetHistoryCommand{ConnID: id, Target: target, Kind: kind})
}
