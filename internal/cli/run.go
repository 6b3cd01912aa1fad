package cli

import (
	"bufio"
	"os"
	"os/signal"
	"strings"

	"github.com/A-s-w-i-n/webRtc-videoCall/internal/call"
	"github.com/A-s-w-i-n/webRtc-videoCall/internal/config"
	"github.com/A-s-w-i-n/webRtc-videoCall/internal/protocol"
	"github.com/A-s-w-i-n/webRtc-videoCall/internal/signaling"
	"github.com/A-s-w-i-n/webRtc-videoCall/internal/ui"
)

// presenter bridges session notifications to terminal output.
type presenter struct{}

func (presenter) CallError(message string) {
	ui.PrintError(message)
}

func (presenter) ConnectionState(state string) {
	ui.PrintInfof("call state: %s", state)
}

func (presenter) RemoteTrack(kind string) {
	ui.PrintSuccessf("receiving remote %s", kind)
}

// runCall drives a whole call from one goroutine: every signaling event
// is consumed from this loop, so negotiation steps never race each
// other and candidates keep their arrival order.
func runCall(create bool, roomName, userName string) error {
	roomName = strings.TrimSpace(roomName)
	userName = strings.TrimSpace(userName)
	if roomName == "" || userName == "" {
		return call.NewError("start call", call.ErrMissingField)
	}

	cfg, err := config.Load(config.Options{
		Server:     flagServer,
		STUNServer: flagSTUN,
		Secure:     flagSecure,
	})
	if err != nil {
		return call.NewError("load config", err)
	}

	stopSpinner := ui.RunConnectionSpinner("Connecting to server...")
	defer stopSpinner()

	client := signaling.NewClient(cfg.WebSocketURL, func(status signaling.Status) {
		ui.PrintConnectionStatus(string(status))
	})
	if err := client.Connect(); err != nil {
		return call.NewError("connect to server", err)
	}
	defer client.Close()
	stopSpinner()

	handler := signaling.NewHandler(client)
	go handler.Start()

	op := "join room"
	joinType := protocol.TypeJoinRoom
	if create {
		op = "create room"
		joinType = protocol.TypeCreateRoom
	}
	client.Send(&protocol.Message{
		Type:     joinType,
		RoomName: roomName,
		UserName: userName,
	})

	factory := call.NewPionFactory(cfg.STUNServers)
	role := call.RoleNone
	audioOn, videoOn := true, true
	var sess *call.Session

	startSession := func(r call.Role) {
		audioOn, videoOn = true, true
		sess = call.NewSession(factory, call.AcquireSynthetic, client.Send, presenter{})
		sess.Begin(r)
	}

	ui.PrintInfo("Commands: a = toggle audio, v = toggle video, q = leave")
	keys := make(chan string, 4)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			keys <- strings.ToLower(strings.TrimSpace(sc.Text()))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	for {
		select {
		case created := <-handler.RoomCreated:
			role = call.RoleInitiator
			ui.RenderRoomInfo(created)
			stopSpinner = ui.RunWaitingSpinner("Waiting for someone to join...")
			startSession(role)

		case ev := <-handler.RoomJoined:
			role = call.RoleResponder
			ui.PrintSuccessf("Joined room %s (%d/2 users)", ev.RoomName, len(ev.Users))
			startSession(role)

		case users := <-handler.UserJoined:
			stopSpinner()
			ui.PrintInfof("%s %d/2 users in room", ui.IconPeer, len(users))
			if sess == nil {
				// Peer rejoined after an earlier departure tore the
				// session down; start a fresh one in the same role.
				startSession(role)
			}
			sess.HandleUserJoined(users)

		case users := <-handler.UserLeft:
			ui.PrintWarning("Peer left the room")
			ui.PrintInfof("%s %d/2 users in room", ui.IconPeer, len(users))
			if sess != nil {
				sess.Close()
				sess = nil
			}

		case desc := <-handler.Offer:
			if sess != nil {
				sess.HandleOffer(desc)
			}

		case desc := <-handler.Answer:
			if sess != nil {
				sess.HandleAnswer(desc)
			}

		case candidate := <-handler.Candidate:
			if sess != nil {
				sess.HandleCandidate(candidate)
			}

		case ev := <-handler.VideoToggle:
			ui.PrintInfof("%s peer %s video", ui.IconVideo, onOff(ev.Enabled))

		case ev := <-handler.AudioToggle:
			ui.PrintInfof("%s peer %s audio", ui.IconAudio, onOff(ev.Enabled))

		case key := <-keys:
			switch key {
			case "a":
				audioOn = !audioOn
				if sess != nil {
					sess.SetAudioEnabled(audioOn)
				}
				ui.PrintInfof("%s your audio %s", ui.IconAudio, onOff(audioOn))
			case "v":
				videoOn = !videoOn
				if sess != nil {
					sess.SetVideoEnabled(videoOn)
				}
				ui.PrintInfof("%s your video %s", ui.IconVideo, onOff(videoOn))
			case "q":
				stopSpinner()
				if sess != nil {
					sess.Close()
				}
				ui.PrintInfo("Left the room")
				return nil
			}

		case message := <-handler.RoomError:
			stopSpinner()
			if sess != nil {
				sess.Close()
			}
			return call.WrapError(op, call.ErrSignalingError, message)

		case <-sig:
			stopSpinner()
			if sess != nil {
				sess.Close()
			}
			ui.PrintInfo("Left the room")
			return nil
		}
	}
}

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
