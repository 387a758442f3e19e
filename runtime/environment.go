package runtime

import (
	"go.uber.org/zap"

	"github.com/wippyai/retro-runtime/abi"
)

// envHandler answers one environment command. data is the payload pointer,
// already checked against NULL unless the command is nullable. A false
// result tells the core the request was not honoured; an error is logged
// and reported to the core as false.
type envHandler func(s *Session, data uint64) (bool, error)

var envHandlers map[abi.Command]envHandler

func init() {
	envHandlers = map[abi.Command]envHandler{
		abi.SetRotation:                         (*Session).envSetRotation,
		abi.GetOverscan:                         (*Session).envGetOverscan,
		abi.GetCanDupe:                          (*Session).envGetCanDupe,
		abi.SetMessage:                          (*Session).envSetMessage,
		abi.Shutdown:                            (*Session).envShutdown,
		abi.SetPerformanceLevel:                 (*Session).envSetPerformanceLevel,
		abi.GetSystemDirectory:                  (*Session).envGetSystemDirectory,
		abi.SetPixelFormat:                      (*Session).envSetPixelFormat,
		abi.SetInputDescriptors:                 (*Session).envSetInputDescriptors,
		abi.SetKeyboardCallback:                 (*Session).envSetKeyboardCallback,
		abi.SetDiskControlInterface:             (*Session).envSetDiskControl,
		abi.SetHWRender:                         (*Session).envSetHWRender,
		abi.GetVariable:                         (*Session).envGetVariable,
		abi.SetVariables:                        (*Session).envSetVariables,
		abi.GetVariableUpdate:                   (*Session).envGetVariableUpdate,
		abi.SetSupportNoGame:                    (*Session).envSetSupportNoGame,
		abi.GetLibretroPath:                     (*Session).envGetLibretroPath,
		abi.SetFrameTimeCallback:                (*Session).envSetFrameTimeCallback,
		abi.SetAudioCallback:                    (*Session).envSetAudioCallback,
		abi.GetRumbleInterface:                  (*Session).envGetRumbleInterface,
		abi.GetInputDeviceCapabilities:          (*Session).envGetInputDeviceCapabilities,
		abi.GetSensorInterface:                  (*Session).envGetSensorInterface,
		abi.GetCameraInterface:                  (*Session).envGetCameraInterface,
		abi.GetLogInterface:                     (*Session).envGetLogInterface,
		abi.GetPerfInterface:                    (*Session).envGetPerfInterface,
		abi.GetLocationInterface:                (*Session).envGetLocationInterface,
		abi.GetCoreAssetsDirectory:              (*Session).envGetCoreAssetsDirectory,
		abi.GetSaveDirectory:                    (*Session).envGetSaveDirectory,
		abi.SetSystemAVInfo:                     (*Session).envSetSystemAVInfo,
		abi.SetProcAddressCallback:              (*Session).envSetProcAddressCallback,
		abi.SetSubsystemInfo:                    (*Session).envSetSubsystemInfo,
		abi.SetControllerInfo:                   (*Session).envSetControllerInfo,
		abi.SetMemoryMaps:                       (*Session).envSetMemoryMaps,
		abi.SetGeometry:                         (*Session).envSetGeometry,
		abi.GetUsername:                         (*Session).envGetUsername,
		abi.GetLanguage:                         (*Session).envGetLanguage,
		abi.SetSupportAchievements:              (*Session).envSetSupportAchievements,
		abi.SetSerializationQuirks:              (*Session).envSetSerializationQuirks,
		abi.SetHWSharedContext:                  (*Session).envSetHWSharedContext,
		abi.GetLEDInterface:                     (*Session).envGetLEDInterface,
		abi.GetAudioVideoEnable:                 (*Session).envGetAudioVideoEnable,
		abi.GetMIDIInterface:                    (*Session).envGetMIDIInterface,
		abi.GetFastForwarding:                   (*Session).envGetFastForwarding,
		abi.GetTargetRefreshRate:                (*Session).envGetTargetRefreshRate,
		abi.GetInputBitmasks:                    (*Session).envGetInputBitmasks,
		abi.GetCoreOptionsVersion:               (*Session).envGetCoreOptionsVersion,
		abi.SetCoreOptions:                      (*Session).envSetCoreOptions,
		abi.SetCoreOptionsIntl:                  (*Session).envSetCoreOptionsIntl,
		abi.SetCoreOptionsDisplay:               (*Session).envSetCoreOptionsDisplay,
		abi.GetPreferredHWRender:                (*Session).envGetPreferredHWRender,
		abi.GetDiskControlInterfaceVersion:      (*Session).envGetDiskControlInterfaceVersion,
		abi.SetDiskControlExtInterface:          (*Session).envSetDiskControlExt,
		abi.GetMessageInterfaceVersion:          (*Session).envGetMessageInterfaceVersion,
		abi.SetMessageExt:                       (*Session).envSetMessageExt,
		abi.GetInputMaxUsers:                    (*Session).envGetInputMaxUsers,
		abi.SetAudioBufferStatusCallback:        (*Session).envSetAudioBufferStatusCallback,
		abi.SetMinimumAudioLatency:              (*Session).envSetMinimumAudioLatency,
		abi.SetFastForwardingOverride:           (*Session).envSetFastForwardingOverride,
		abi.SetContentInfoOverride:              (*Session).envSetContentInfoOverride,
		abi.GetGameInfoExt:                      (*Session).envGetGameInfoExt,
		abi.SetCoreOptionsV2:                    (*Session).envSetCoreOptionsV2,
		abi.SetCoreOptionsV2Intl:                (*Session).envSetCoreOptionsV2Intl,
		abi.SetCoreOptionsUpdateDisplayCallback: (*Session).envSetCoreOptionsUpdateDisplayCallback,
		abi.SetVariable:                         (*Session).envSetVariable,
		abi.GetThrottleState:                    (*Session).envGetThrottleState,
		abi.GetSavestateContext:                 (*Session).envGetSavestateContext,
		abi.GetJITCapable:                       (*Session).envGetJITCapable,
		abi.GetMicrophoneInterface:              (*Session).envGetMicrophoneInterface,
		abi.GetDevicePower:                      (*Session).envGetDevicePower,
		abi.SetNetpacketInterface:               (*Session).envSetNetpacketInterface,
		abi.GetPlaylistDirectory:                (*Session).envGetPlaylistDirectory,
		abi.GetFileBrowserStartDirectory:        (*Session).envGetFileBrowserStartDirectory,
	}
}

// Dispatch handles one environment command as if the core had called the
// environment callback with code and data. Unknown codes, commands the
// current state forbids, malformed payloads and driver rejections all
// return false; Dispatch never fails otherwise.
func (s *Session) Dispatch(code uint32, data uint64) bool {
	spec, ok := abi.Lookup(code)
	if !ok {
		s.log.Debug("unknown environment command", zap.Uint32("code", code))
		return false
	}
	if s.closed || !commandAllowed(spec.Code, s.state, s.loading) {
		s.log.Debug("environment command not allowed",
			zap.String("cmd", spec.Name),
			zap.Stringer("state", s.state))
		return false
	}
	h := envHandlers[spec.Code]
	if h == nil {
		s.log.Debug("environment command unsupported", zap.String("cmd", spec.Name))
		return false
	}
	if data == 0 && spec.Direction != abi.DirCommand && !spec.Nullable {
		s.log.Debug("environment command without payload", zap.String("cmd", spec.Name))
		return false
	}
	ok, err := h(s, data)
	if err != nil {
		s.log.Debug("environment command failed", zap.String("cmd", spec.Name), zap.Error(err))
		return false
	}
	return ok
}

// commandAllowed reports whether cmd may be issued in state. loading is set
// while retro_load_game runs.
func commandAllowed(cmd abi.Command, state State, loading bool) bool {
	if !state.live() {
		return false
	}
	switch cmd {
	case abi.SetVariables, abi.SetCoreOptions, abi.SetCoreOptionsIntl,
		abi.SetCoreOptionsV2, abi.SetCoreOptionsV2Intl,
		abi.SetSupportNoGame, abi.SetSubsystemInfo, abi.SetContentInfoOverride:
		return state == StateLoaded || state == StateInitialized
	case abi.SetPixelFormat:
		return state != StateRunning
	case abi.GetGameInfoExt, abi.SetSystemAVInfo, abi.SetGeometry:
		return loading || state.HasGame()
	}
	return true
}
