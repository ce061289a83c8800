// Package event defines the event record exchanged with the pipeline host.
//
// PluginEvent mirrors the JSON shape the host sends to plugins. Its property
// sets are held in Properties, an insertion-ordered map, because identifiers
// derived from the full property set depend on the order the client sent the
// keys in.
//
//	var ev event.PluginEvent
//	if err := json.Unmarshal(data, &ev); err != nil {
//		return err
//	}
//	ev.Properties.Range(func(key string, value any) bool {
//		fmt.Println(key, value)
//		return true
//	})
package event
