package engine

// Entry is an exported libretro entry point.
type Entry uint8

const (
	EntryAPIVersion Entry = iota
	EntrySetEnvironment
	EntrySetVideoRefresh
	EntrySetAudioSample
	EntrySetAudioSampleBatch
	EntrySetInputPoll
	EntrySetInputState
	EntryInit
	EntryDeinit
	EntryGetSystemInfo
	EntryGetSystemAVInfo
	EntrySetControllerPortDevice
	EntryReset
	EntryRun
	EntrySerializeSize
	EntrySerialize
	EntryUnserialize
	EntryCheatReset
	EntryCheatSet
	EntryLoadGame
	EntryLoadGameSpecial
	EntryUnloadGame
	EntryGetRegion
	EntryGetMemoryData
	EntryGetMemorySize

	numEntries
)

type entryInfo struct {
	symbol   string
	sig      Signature
	required bool
}

var entries = [numEntries]entryInfo{
	EntryAPIVersion:              {"retro_api_version", Sig("u_"), true},
	EntrySetEnvironment:          {"retro_set_environment", Sig("v_p"), true},
	EntrySetVideoRefresh:         {"retro_set_video_refresh", Sig("v_p"), true},
	EntrySetAudioSample:          {"retro_set_audio_sample", Sig("v_p"), true},
	EntrySetAudioSampleBatch:     {"retro_set_audio_sample_batch", Sig("v_p"), true},
	EntrySetInputPoll:            {"retro_set_input_poll", Sig("v_p"), true},
	EntrySetInputState:           {"retro_set_input_state", Sig("v_p"), true},
	EntryInit:                    {"retro_init", Sig("v_"), true},
	EntryDeinit:                  {"retro_deinit", Sig("v_"), true},
	EntryGetSystemInfo:           {"retro_get_system_info", Sig("v_p"), true},
	EntryGetSystemAVInfo:         {"retro_get_system_av_info", Sig("v_p"), true},
	EntrySetControllerPortDevice: {"retro_set_controller_port_device", Sig("v_uu"), false},
	EntryReset:                   {"retro_reset", Sig("v_"), false},
	EntryRun:                     {"retro_run", Sig("v_"), true},
	EntrySerializeSize:           {"retro_serialize_size", Sig("z_"), false},
	EntrySerialize:               {"retro_serialize", Sig("b_pz"), false},
	EntryUnserialize:             {"retro_unserialize", Sig("b_pz"), false},
	EntryCheatReset:              {"retro_cheat_reset", Sig("v_"), false},
	EntryCheatSet:                {"retro_cheat_set", Sig("v_ubp"), false},
	EntryLoadGame:                {"retro_load_game", Sig("b_p"), true},
	EntryLoadGameSpecial:         {"retro_load_game_special", Sig("b_upz"), false},
	EntryUnloadGame:              {"retro_unload_game", Sig("v_"), true},
	EntryGetRegion:               {"retro_get_region", Sig("u_"), false},
	EntryGetMemoryData:           {"retro_get_memory_data", Sig("p_u"), false},
	EntryGetMemorySize:           {"retro_get_memory_size", Sig("z_u"), false},
}

// Symbol returns the exported symbol name.
func (e Entry) Symbol() string {
	if e >= numEntries {
		return ""
	}
	return entries[e].symbol
}

// Signature returns the C signature of the entry point.
func (e Entry) Signature() Signature {
	if e >= numEntries {
		return Signature{Result: KindVoid}
	}
	return entries[e].sig
}

// Required reports whether a core without this export is rejected at load.
func (e Entry) Required() bool {
	return e < numEntries && entries[e].required
}

func (e Entry) String() string {
	if s := e.Symbol(); s != "" {
		return s
	}
	return "unknown entry"
}

// Entries returns every entry point in declaration order.
func Entries() []Entry {
	out := make([]Entry, numEntries)
	for i := range out {
		out[i] = Entry(i)
	}
	return out
}
