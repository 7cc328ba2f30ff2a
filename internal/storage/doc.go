/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists item transforms in a small key-value store.
// The canonical record is a JSON array under a versioned key; an older
// schema under the legacy key is upgraded on load and written back.
// Backends: in-memory, a directory of JSON files with transactional writes
// and timestamped backups, an embedded SQLite database and PostgreSQL.
// Storage failures never reach the caller of the transform store; it falls
// back to catalog defaults and logs instead.
package storage
