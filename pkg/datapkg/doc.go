/*
Package datapkg maintains the per-game name tables delivered in the
server's DataPackage reply.

The server sends name-to-id maps; receivers mostly need the inverse, so
the store inverts them on merge and answers id-to-name lookups for
items and locations.

# Disk Cache

Tables change rarely and can be large, so the store optionally caches
each game's tables on disk, keyed by the checksum the server reports in
RoomInfo-era DataPackage payloads. A later session whose server reports
the same checksum can serve lookups from the cache without
re-requesting the game.
*/
package datapkg
